package graph

import "testing"

func TestConnectedGuessedUnits(t *testing.T) {
	// A-B-C-D-E with F hanging off C
	g := buildEdges(Opstina,
		[]string{"A", "B"}, []string{"B", "C"}, []string{"C", "D"}, []string{"D", "E"}, []string{"C", "F"},
	)
	tests := []struct {
		name    string
		guessed GuessedSet
		want    []string
	}{
		{name: "empty guess", guessed: nil, want: []string{}},
		{name: "touching start", guessed: NewGuessedSet("B"), want: []string{"B"}},
		{name: "chain from start", guessed: NewGuessedSet("B", "C", "F"), want: []string{"B", "C", "F"}},
		{name: "island not connected", guessed: NewGuessedSet("C"), want: []string{}},
		{name: "both ends", guessed: NewGuessedSet("B", "D"), want: []string{"B", "D"}},
		{name: "endpoints excluded", guessed: NewGuessedSet("A", "E", "B"), want: []string{"B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.ConnectedGuessedUnits("A", "E", tt.guessed)
			if err != nil {
				t.Fatalf("ConnectedGuessedUnits: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
				if !tt.guessed.Has(got[i]) {
					t.Fatalf("%s returned but never guessed", got[i])
				}
			}
		})
	}
}

func TestConnectedGuessedUnits_Unknown(t *testing.T) {
	g := buildEdges(Opstina, []string{"A", "B"})
	if _, err := g.ConnectedGuessedUnits("A", "B", NewGuessedSet("Q")); !IsUnknownUnit(err) {
		t.Errorf("err = %v, want UnknownUnitError", err)
	}
}
