package graph

import "slices"

// Graph is the adjacency graph of one unit type. It is immutable once Build
// returns and safe for concurrent readers.
type Graph struct {
	Type UnitType

	names []string
	index map[string]int
	// adj[i] holds the neighbor indexes of node i, sorted ascending.
	adj       [][]int
	component []int

	stats      Stats
	degenerate error
}

// Stats summarises a built graph.
type Stats struct {
	Nodes           int `json:"nodes"`
	Edges           int `json:"edges"`
	Components      int `json:"components"`
	DroppedEdges    int `json:"dropped_edges"`
	AsymmetricEdges int `json:"asymmetric_edges"`
}

// Build constructs the graph of type t from adjacency lists. Nodes keep the
// input order; a repeated name merges its neighbor list into the first entry.
// Self-loops and edges to names that are not nodes are dropped. Edges are
// kept as given: a one-directional entry stays one-directional.
func Build(t UnitType, units []Unit) *Graph {
	g := &Graph{
		Type:  t,
		index: make(map[string]int, len(units)),
	}
	for _, u := range units {
		if u.Name == "" {
			continue
		}
		if _, ok := g.index[u.Name]; ok {
			continue
		}
		g.index[u.Name] = len(g.names)
		g.names = append(g.names, u.Name)
	}

	g.adj = make([][]int, len(g.names))
	for _, u := range units {
		from, ok := g.index[u.Name]
		if !ok {
			continue
		}
		for _, n := range u.Neighbors {
			to, ok := g.index[n]
			if !ok || to == from {
				g.stats.DroppedEdges++
				continue
			}
			g.adj[from] = append(g.adj[from], to)
		}
	}
	for i := range g.adj {
		slices.Sort(g.adj[i])
		g.adj[i] = slices.Compact(g.adj[i])
		g.stats.Edges += len(g.adj[i])
	}
	for i, ns := range g.adj {
		for _, j := range ns {
			if !g.adjacent(j, i) {
				g.stats.AsymmetricEdges++
			}
		}
	}

	g.stats.Nodes = len(g.names)
	g.stats.Components = g.labelComponents()
	g.degenerate = g.checkDegenerate()
	return g
}

// Stats returns the build statistics.
func (g *Graph) Stats() Stats { return g.stats }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.names) }

// Names returns every node name in input order.
func (g *Graph) Names() []string {
	return slices.Clone(g.names)
}

// Exists reports whether name is a node of the graph.
func (g *Graph) Exists(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Adjacent reports whether b is listed as a neighbor of a.
func (g *Graph) Adjacent(a, b string) bool {
	i, ok := g.index[a]
	if !ok {
		return false
	}
	j, ok := g.index[b]
	if !ok {
		return false
	}
	return g.adjacent(i, j)
}

// Neighbors returns the neighbor names of name in node order.
func (g *Graph) Neighbors(name string) ([]string, error) {
	i, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(g.adj[i]))
	for k, j := range g.adj[i] {
		out[k] = g.names[j]
	}
	return out, nil
}

// Component returns the component id of name. Only equality between two ids
// is meaningful.
func (g *Graph) Component(name string) (int, error) {
	i, err := g.lookup(name)
	if err != nil {
		return 0, err
	}
	return g.component[i], nil
}

// SameComponent reports whether a and b carry the same component id.
func (g *Graph) SameComponent(a, b string) (bool, error) {
	i, err := g.lookup(a)
	if err != nil {
		return false, err
	}
	j, err := g.lookup(b)
	if err != nil {
		return false, err
	}
	return g.component[i] == g.component[j], nil
}

// Validate returns a *DegenerateGraphError when no puzzle can be drawn from
// the graph.
func (g *Graph) Validate() error {
	return g.degenerate
}

func (g *Graph) lookup(name string) (int, error) {
	i, ok := g.index[name]
	if !ok {
		return 0, &UnknownUnitError{Type: g.Type, Name: name}
	}
	return i, nil
}

func (g *Graph) adjacent(i, j int) bool {
	_, found := slices.BinarySearch(g.adj[i], j)
	return found
}

// guessedMask resolves guessed names to a per-node flag slice.
func (g *Graph) guessedMask(guessed GuessedSet) ([]bool, error) {
	mask := make([]bool, len(g.names))
	for name := range guessed {
		i, err := g.lookup(name)
		if err != nil {
			return nil, err
		}
		mask[i] = true
	}
	return mask, nil
}
