package engine

import (
	"context"
	"errors"
	"fmt"

	"borderhopper/internal/db"
	"borderhopper/internal/graph"
	"borderhopper/internal/metrics"
	"borderhopper/internal/suggest"
)

// GeometryStore serves the stored boundaries of units.
type GeometryStore interface {
	Geometry(ctx context.Context, t graph.UnitType, name string) (string, bool, error)
	Geometries(ctx context.Context, t graph.UnitType) ([]db.NamedGeometry, error)
}

// Service answers game queries against the registry's current graphs.
type Service struct {
	registry   *Registry
	geometries GeometryStore
}

// NewService creates a Service. geometries may be nil when boundaries are
// not served.
func NewService(registry *Registry, geometries GeometryStore) *Service {
	return &Service{registry: registry, geometries: geometries}
}

// Registry exposes the underlying registry.
func (s *Service) Registry() *Registry { return s.registry }

func (s *Service) graphFor(t graph.UnitType) (*graph.Graph, error) {
	snap, err := s.registry.Get(t)
	if err != nil {
		return nil, err
	}
	return snap.Graph, nil
}

func observe(op string, t graph.UnitType, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case graph.IsUnknownUnit(err):
		outcome = "unknown_unit"
	case errors.Is(err, ErrTypeNotLoaded):
		outcome = "not_loaded"
	default:
		outcome = "error"
	}
	metrics.QueriesTotal.WithLabelValues(op, string(t), outcome).Inc()
}

// RandomConnected draws a new puzzle of type t.
func (s *Service) RandomConnected(t graph.UnitType) (pair graph.Pair, err error) {
	defer func() { observe("random", t, err) }()
	g, err := s.graphFor(t)
	if err != nil {
		return graph.Pair{}, err
	}
	return g.RandomLinkedPair(nil)
}

// NextUnit returns the next hint; ok is false when there is none.
func (s *Service) NextUnit(t graph.UnitType, start, end string, guessed graph.GuessedSet) (hint string, ok bool, err error) {
	defer func() { observe("hint", t, err) }()
	g, err := s.graphFor(t)
	if err != nil {
		return "", false, err
	}
	return g.NextHint(start, end, guessed)
}

// DistanceRemaining returns the number of units still to guess, or graph.NoPath.
func (s *Service) DistanceRemaining(t graph.UnitType, start, end string, guessed graph.GuessedSet) (d int, err error) {
	defer func() { observe("distance", t, err) }()
	g, err := s.graphFor(t)
	if err != nil {
		return graph.NoPath, err
	}
	return g.DistanceRemaining(start, end, guessed)
}

// Connected returns the guessed units linked to start or end through guesses.
func (s *Service) Connected(t graph.UnitType, start, end string, guessed graph.GuessedSet) (units []string, err error) {
	defer func() { observe("connected", t, err) }()
	g, err := s.graphFor(t)
	if err != nil {
		return nil, err
	}
	return g.ConnectedGuessedUnits(start, end, guessed)
}

// Path returns the full cheapest chain from start to end, nil when unreachable.
func (s *Service) Path(t graph.UnitType, start, end string, guessed graph.GuessedSet) (path []string, err error) {
	defer func() { observe("path", t, err) }()
	g, err := s.graphFor(t)
	if err != nil {
		return nil, err
	}
	return g.Path(start, end, guessed)
}

// UnitExists reports whether name is a unit of type t.
func (s *Service) UnitExists(t graph.UnitType, name string) (bool, error) {
	g, err := s.graphFor(t)
	if err != nil {
		return false, err
	}
	return g.Exists(name), nil
}

// Suggest ranks unit names of type t against a partial query.
func (s *Service) Suggest(t graph.UnitType, query string, topN int) (matches []suggest.Match, err error) {
	defer func() { observe("suggest", t, err) }()
	snap, err := s.registry.Get(t)
	if err != nil {
		return nil, err
	}
	return snap.Index.Rank(query, topN), nil
}

// Geometry returns the stored boundary of one unit.
func (s *Service) Geometry(ctx context.Context, t graph.UnitType, name string) (string, error) {
	if s.geometries == nil {
		return "", fmt.Errorf("%s: %w", t, ErrTypeNotLoaded)
	}
	geojson, ok, err := s.geometries.Geometry(ctx, t, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &graph.UnknownUnitError{Type: t, Name: name}
	}
	return geojson, nil
}

// Geometries returns every stored boundary of type t.
func (s *Service) Geometries(ctx context.Context, t graph.UnitType) ([]db.NamedGeometry, error) {
	if s.geometries == nil {
		return nil, fmt.Errorf("%s: %w", t, ErrTypeNotLoaded)
	}
	return s.geometries.Geometries(ctx, t)
}

// Rebuild reloads every graph from storage.
func (s *Service) Rebuild(ctx context.Context) error {
	return s.registry.Rebuild(ctx)
}

// Status reports per-type graph statistics.
func (s *Service) Status() []TypeStatus {
	return s.registry.Status()
}
