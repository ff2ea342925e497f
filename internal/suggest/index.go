package suggest

import (
	"strings"

	"github.com/tidwall/btree"

	"borderhopper/internal/graph"
)

// unfilteredSuffix is hidden from CountryUnfiltered labels.
const unfilteredSuffix = "Unfiltered"

// Match is one ranked suggestion.
type Match struct {
	Name  string `json:"name"`  // unit name as stored in the graph
	Label string `json:"label"` // name shown to the player
	Score int    `json:"score"`
	order int
}

type entry struct {
	name  string
	label string
	key   string
}

// Index holds the normalized search keys of one unit type. It is read-only
// after NewIndex and safe for concurrent use.
type Index struct {
	Type    graph.UnitType
	entries []entry
}

// NewIndex precomputes labels and keys for names, keeping their order.
func NewIndex(t graph.UnitType, names []string) *Index {
	idx := &Index{Type: t, entries: make([]entry, 0, len(names))}
	for _, name := range names {
		label := name
		if t == graph.CountryUnfiltered {
			label = strings.TrimSuffix(label, unfilteredSuffix)
		}
		idx.entries = append(idx.entries, entry{
			name:  name,
			label: label,
			key:   Normalize(label),
		})
	}
	return idx
}

// Len returns the number of indexed names.
func (idx *Index) Len() int { return len(idx.entries) }

func byScore(a, b Match) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.order < b.order
}

// Rank returns up to topN names ordered by ascending score; equal scores keep
// index order.
func (idx *Index) Rank(query string, topN int) []Match {
	if topN <= 0 {
		return []Match{}
	}
	q := Normalize(query)

	ranked := btree.NewBTreeGOptions(byScore, btree.Options{NoLocks: true})
	for i, e := range idx.entries {
		score, ok := Score(q, e.key)
		if !ok {
			continue
		}
		ranked.Set(Match{Name: e.name, Label: e.label, Score: score, order: i})
	}

	out := make([]Match, 0, min(topN, ranked.Len()))
	ranked.Scan(func(m Match) bool {
		out = append(out, m)
		return len(out) < topN
	})
	return out
}

// Labels is Rank reduced to display labels.
func (idx *Index) Labels(query string, topN int) []string {
	matches := idx.Rank(query, topN)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Label
	}
	return out
}
