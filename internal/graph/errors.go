package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned when a unit type name is not recognised.
	ErrUnknownType = errors.New("unknown unit type")
	// ErrSamplingExhausted is returned when RandomLinkedPair rejects
	// MaxSampleAttempts samples in a row.
	ErrSamplingExhausted = errors.New("no linked pair found within sampling budget")
	// ErrDegenerateGraph matches every *DegenerateGraphError via errors.Is.
	ErrDegenerateGraph = errors.New("degenerate graph")
)

// UnknownUnitError reports a unit name that is not a node of the graph.
type UnknownUnitError struct {
	Type UnitType
	Name string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("Unit not found: %s", e.Name)
}

// DegenerateGraphError reports a graph that cannot produce a puzzle: no two
// distinct units share a component without bordering each other.
type DegenerateGraphError struct {
	Type       UnitType
	Nodes      int
	Components int
}

func (e *DegenerateGraphError) Error() string {
	return fmt.Sprintf("%s graph has no linked pair (%d nodes, %d components)", e.Type, e.Nodes, e.Components)
}

func (e *DegenerateGraphError) Is(target error) bool {
	return target == ErrDegenerateGraph
}

// IsUnknownUnit reports whether err carries an *UnknownUnitError.
func IsUnknownUnit(err error) bool {
	var u *UnknownUnitError
	return errors.As(err, &u)
}
