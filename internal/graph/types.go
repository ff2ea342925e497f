package graph

import (
	"fmt"
	"strings"
)

// UnitType is the category of a geographical unit. Every type forms its own
// independent adjacency graph.
type UnitType string

const (
	Country           UnitType = "Country"
	CountryUnfiltered UnitType = "CountryUnfiltered"
	Okrug             UnitType = "Okrug"
	Opstina           UnitType = "Opstina"
	Tablica           UnitType = "Tablica"
)

var allUnitTypes = []UnitType{Country, CountryUnfiltered, Okrug, Opstina, Tablica}

// AllUnitTypes returns every known unit type in declaration order.
func AllUnitTypes() []UnitType {
	out := make([]UnitType, len(allUnitTypes))
	copy(out, allUnitTypes)
	return out
}

// ParseUnitType resolves a type name case-insensitively.
func ParseUnitType(s string) (UnitType, error) {
	s = strings.TrimSpace(s)
	for _, t := range allUnitTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Unit is one adjacency-list entry: a unit name and the names it borders.
type Unit struct {
	Name      string
	Neighbors []string
}

// Pair is a puzzle: two units in the same component that do not border each other.
type Pair struct {
	Start string `json:"first"`
	End   string `json:"second"`
}

// GuessedSet holds the unit names a player has already revealed.
type GuessedSet map[string]struct{}

// NewGuessedSet builds a set from names, ignoring blanks.
func NewGuessedSet(names ...string) GuessedSet {
	s := make(GuessedSet, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name was guessed. A nil set contains nothing.
func (s GuessedSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts name into the set.
func (s GuessedSet) Add(name string) { s[name] = struct{}{} }
