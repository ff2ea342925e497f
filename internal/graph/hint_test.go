package graph

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

func scenarioChain() *Graph {
	// A-B-C-D with a spur A-E
	return buildEdges(Country, []string{"A", "B"}, []string{"B", "C"}, []string{"C", "D"}, []string{"A", "E"})
}

func TestNextHint_Chain(t *testing.T) {
	g := scenarioChain()

	hint, ok, err := g.NextHint("A", "D", nil)
	if err != nil {
		t.Fatalf("NextHint: %v", err)
	}
	if !ok || (hint != "B" && hint != "C") {
		t.Fatalf("NextHint(A, D, {}) = %q, %v; want B or C", hint, ok)
	}
	// the parent walk starts at start's parent
	if hint != "B" {
		t.Errorf("NextHint(A, D, {}) = %q, want B", hint)
	}

	hint, ok, _ = g.NextHint("A", "D", NewGuessedSet("B"))
	if !ok || hint != "C" {
		t.Errorf("NextHint with B guessed = %q, %v; want C", hint, ok)
	}

	_, ok, _ = g.NextHint("A", "D", NewGuessedSet("B", "C"))
	if ok {
		t.Error("fully revealed path must yield no hint")
	}
}

func TestDistanceRemaining_Chain(t *testing.T) {
	g := scenarioChain()
	tests := []struct {
		name    string
		guessed GuessedSet
		want    int
	}{
		{name: "nothing guessed", guessed: nil, want: 2},
		{name: "C guessed", guessed: NewGuessedSet("C"), want: 1},
		{name: "B and C guessed", guessed: NewGuessedSet("B", "C"), want: 0},
		{name: "off-path guess", guessed: NewGuessedSet("E"), want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.DistanceRemaining("A", "D", tt.guessed)
			if err != nil {
				t.Fatalf("DistanceRemaining: %v", err)
			}
			if got != tt.want {
				t.Errorf("DistanceRemaining = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNoPath_TwoComponents(t *testing.T) {
	g := buildEdges(Country, []string{"A", "B"}, []string{"C", "D"})
	hint, ok, err := g.NextHint("A", "C", nil)
	if err != nil || ok || hint != "" {
		t.Errorf("NextHint(A, C) = %q, %v, %v; want no hint", hint, ok, err)
	}
	d, err := g.DistanceRemaining("A", "C", nil)
	if err != nil || d != NoPath {
		t.Errorf("DistanceRemaining(A, C) = %d, %v; want -1", d, err)
	}
	p, err := g.Path("A", "C", nil)
	if err != nil || p != nil {
		t.Errorf("Path(A, C) = %v, %v; want nil", p, err)
	}
}

func TestSameStartAndEnd(t *testing.T) {
	g := scenarioChain()
	_, ok, err := g.NextHint("B", "B", nil)
	if err != nil || ok {
		t.Errorf("NextHint(B, B) ok=%v err=%v, want solved", ok, err)
	}
	d, err := g.DistanceRemaining("B", "B", nil)
	if err != nil || d != 0 {
		t.Errorf("DistanceRemaining(B, B) = %d, %v; want 0", d, err)
	}
	p, _ := g.Path("B", "B", nil)
	if len(p) != 1 || p[0] != "B" {
		t.Errorf("Path(B, B) = %v", p)
	}
}

func TestAdjacentEndpoints(t *testing.T) {
	g := scenarioChain()
	d, _ := g.DistanceRemaining("A", "B", nil)
	if d != 0 {
		t.Errorf("DistanceRemaining(A, B) = %d, want 0", d)
	}
	if _, ok, _ := g.NextHint("A", "B", nil); ok {
		t.Error("adjacent endpoints need no hint")
	}
}

func TestGuessedEndpointsIgnored(t *testing.T) {
	g := scenarioChain()
	d, _ := g.DistanceRemaining("A", "D", NewGuessedSet("A", "D"))
	if d != 2 {
		t.Errorf("DistanceRemaining with endpoints guessed = %d, want 2", d)
	}
}

func TestUnknownUnits(t *testing.T) {
	g := scenarioChain()
	if _, _, err := g.NextHint("A", "Z", nil); !IsUnknownUnit(err) {
		t.Errorf("unknown end err = %v", err)
	}
	if _, err := g.DistanceRemaining("Z", "A", nil); !IsUnknownUnit(err) {
		t.Errorf("unknown start err = %v", err)
	}
	_, err := g.DistanceRemaining("A", "D", NewGuessedSet("Q"))
	if !IsUnknownUnit(err) {
		t.Fatalf("unknown guessed err = %v", err)
	}
	if err.Error() != "Unit not found: Q" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestHintPrefersGuessedDetour(t *testing.T) {
	// S-X-T is short, S-G1-G2-T is longer but already revealed.
	g := buildEdges(Country,
		[]string{"S", "X"}, []string{"X", "T"},
		[]string{"S", "G1"}, []string{"G1", "G2"}, []string{"G2", "T"},
	)
	guessed := NewGuessedSet("G1", "G2")
	d, _ := g.DistanceRemaining("S", "T", guessed)
	if d != 0 {
		t.Errorf("DistanceRemaining = %d, want 0 through the revealed detour", d)
	}
	p, _ := g.Path("S", "T", guessed)
	want := []string{"S", "G1", "G2", "T"}
	if len(p) != len(want) {
		t.Fatalf("Path = %v, want %v", p, want)
	}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("Path = %v, want %v", p, want)
		}
	}
}

// referenceDistance computes the 0/1 distance with gonum's Dijkstra.
func referenceDistance(g *Graph, start, end string, guessed GuessedSet) int {
	ref := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := range g.names {
		ref.AddNode(simple.Node(i))
	}
	for i, ns := range g.adj {
		for _, j := range ns {
			w := 1.0
			if guessed.Has(g.names[j]) && g.names[j] != start && g.names[j] != end {
				w = 0
			}
			ref.SetWeightedEdge(ref.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
		}
	}
	sh := path.DijkstraFrom(simple.Node(g.index[end]), ref)
	w := sh.WeightTo(int64(g.index[start]))
	if math.IsInf(w, 1) {
		return NoPath
	}
	return int(w) - 1
}

func TestDistanceRemaining_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for round := 0; round < 30; round++ {
		n := 6 + rng.IntN(25)
		g := Build(Country, randomUnits(rng, n, 0.12))
		names := g.Names()
		guessed := NewGuessedSet()
		for _, name := range names {
			if rng.Float64() < 0.3 {
				guessed.Add(name)
			}
		}
		for k := 0; k < 10; k++ {
			s, e := names[rng.IntN(n)], names[rng.IntN(n)]
			if s == e {
				continue
			}
			got, err := g.DistanceRemaining(s, e, guessed)
			if err != nil {
				t.Fatal(err)
			}
			if want := referenceDistance(g, s, e, guessed); got != want {
				t.Fatalf("round %d: DistanceRemaining(%s, %s) = %d, reference %d", round, s, e, got, want)
			}
		}
	}
}

func TestHintLoop_ReachesSolvedInDistanceSteps(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 42))
	for round := 0; round < 30; round++ {
		n := 8 + rng.IntN(30)
		g := Build(Country, randomUnits(rng, n, 0.1))
		names := g.Names()
		s, e := names[rng.IntN(n)], names[rng.IntN(n)]
		if s == e {
			continue
		}
		same, _ := g.SameComponent(s, e)
		guessed := NewGuessedSet()
		d0, _ := g.DistanceRemaining(s, e, guessed)
		if (d0 == NoPath) == same {
			t.Fatalf("round %d: distance %d disagrees with SameComponent %v", round, d0, same)
		}
		if d0 == NoPath {
			continue
		}

		steps := 0
		prev := d0
		for {
			hint, ok, err := g.NextHint(s, e, guessed)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				break
			}
			if guessed.Has(hint) {
				t.Fatalf("round %d: hint %s already guessed", round, hint)
			}
			guessed.Add(hint)
			steps++
			d, _ := g.DistanceRemaining(s, e, guessed)
			if d > prev {
				t.Fatalf("round %d: distance grew from %d to %d", round, prev, d)
			}
			prev = d
			if steps > n {
				t.Fatalf("round %d: hint loop does not terminate", round)
			}
		}
		if steps != d0 {
			t.Fatalf("round %d: solved in %d hints, DistanceRemaining said %d", round, steps, d0)
		}
		if d, _ := g.DistanceRemaining(s, e, guessed); d != 0 {
			t.Fatalf("round %d: distance after solving = %d", round, d)
		}

		p, _ := g.Path(s, e, guessed)
		if p[0] != s || p[len(p)-1] != e {
			t.Fatalf("round %d: path endpoints %v", round, p)
		}
		for i := 0; i+1 < len(p); i++ {
			if !g.Adjacent(p[i], p[i+1]) {
				t.Fatalf("round %d: %s and %s are not adjacent in %v", round, p[i], p[i+1], p)
			}
		}
		for _, mid := range p[1 : len(p)-1] {
			if !guessed.Has(mid) {
				t.Fatalf("round %d: %s on solved path is not guessed", round, mid)
			}
		}
	}
}

func TestDistanceRemaining_MonotoneInGuesses(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	g := Build(Country, randomUnits(rng, 30, 0.1))
	names := g.Names()
	s, e := names[0], names[29]
	guessed := NewGuessedSet()
	prev, _ := g.DistanceRemaining(s, e, guessed)
	for _, i := range rng.Perm(len(names)) {
		guessed.Add(names[i])
		d, _ := g.DistanceRemaining(s, e, guessed)
		if prev != NoPath && d > prev {
			t.Fatalf("distance grew from %d to %d after guessing %s", prev, d, names[i])
		}
		if (prev == NoPath) != (d == NoPath) {
			t.Fatalf("reachability changed by guessing %s", names[i])
		}
		prev = d
	}
}

func TestOneWayEdges(t *testing.T) {
	// A-B-C where B does not list A: the edge A->B exists, B->A does not
	g := Build(Country, []Unit{
		{Name: "A", Neighbors: []string{"B"}},
		{Name: "B", Neighbors: []string{"C"}},
		{Name: "C", Neighbors: []string{"B"}},
	})
	if got := g.Stats().AsymmetricEdges; got != 1 {
		t.Fatalf("AsymmetricEdges = %d, want 1", got)
	}

	// the search runs from end, so only C -> A can follow A->B
	hint, ok, err := g.NextHint("C", "A", nil)
	if err != nil || !ok || hint != "B" {
		t.Errorf("NextHint(C, A) = %q, %v, %v; want B", hint, ok, err)
	}
	if d, _ := g.DistanceRemaining("C", "A", nil); d != 1 {
		t.Errorf("DistanceRemaining(C, A) = %d, want 1", d)
	}
	if p, _ := g.Path("C", "A", nil); len(p) != 3 || p[0] != "C" || p[1] != "B" || p[2] != "A" {
		t.Errorf("Path(C, A) = %v, want [C B A]", p)
	}

	_, ok, err = g.NextHint("A", "C", nil)
	if err != nil || ok {
		t.Errorf("NextHint(A, C) ok=%v err=%v, want no hint", ok, err)
	}
	if d, _ := g.DistanceRemaining("A", "C", nil); d != NoPath {
		t.Errorf("DistanceRemaining(A, C) = %d, want NoPath", d)
	}
	if p, _ := g.Path("A", "C", nil); p != nil {
		t.Errorf("Path(A, C) = %v, want nil", p)
	}
}

func TestConnectedGuessedUnits_OneWayEdges(t *testing.T) {
	forward := Build(Country, []Unit{
		{Name: "A", Neighbors: []string{"B"}},
		{Name: "B"},
		{Name: "D"},
	})
	got, err := forward.ConnectedGuessedUnits("A", "D", NewGuessedSet("B"))
	if err != nil {
		t.Fatalf("ConnectedGuessedUnits: %v", err)
	}
	if len(got) != 1 || got[0] != "B" {
		t.Errorf("forward edge: got %v, want [B]", got)
	}

	backward := Build(Country, []Unit{
		{Name: "A"},
		{Name: "B", Neighbors: []string{"A"}},
		{Name: "D"},
	})
	got, err = backward.ConnectedGuessedUnits("A", "D", NewGuessedSet("B"))
	if err != nil {
		t.Fatalf("ConnectedGuessedUnits: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("backward edge: got %v, want none", got)
	}
}
