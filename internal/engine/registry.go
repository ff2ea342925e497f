package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"borderhopper/internal/graph"
	"borderhopper/internal/logger"
	"borderhopper/internal/metrics"
	"borderhopper/internal/suggest"
)

// ErrTypeNotLoaded is returned for a unit type that has no stored units.
var ErrTypeNotLoaded = errors.New("unit type not loaded")

// UnitSource supplies the adjacency lists of one unit type.
type UnitSource interface {
	UnitsByType(ctx context.Context, t graph.UnitType) ([]graph.Unit, error)
}

// Snapshot is the immutable per-type state served to readers.
type Snapshot struct {
	Graph   *graph.Graph
	Index   *suggest.Index
	BuiltAt time.Time
}

// TypeStatus summarizes one unit type for /api/status.
type TypeStatus struct {
	Type       graph.UnitType `json:"type"`
	Loaded     bool           `json:"loaded"`
	Playable   bool           `json:"playable"`
	Stats      graph.Stats    `json:"stats"`
	BuiltAt    string         `json:"built_at,omitempty"`
	Degenerate string         `json:"degenerate,omitempty"`
}

// Registry owns the graphs of every unit type. Graphs are rebuilt as a whole
// and swapped in under the write lock; readers never see a partial rebuild.
// Concurrent Rebuild calls share one in-flight rebuild.
type Registry struct {
	source UnitSource

	mu    sync.RWMutex
	snaps map[graph.UnitType]*Snapshot

	group singleflight.Group
}

// NewRegistry creates an empty registry. Call Rebuild to load graphs.
func NewRegistry(source UnitSource) *Registry {
	return &Registry{
		source: source,
		snaps:  make(map[graph.UnitType]*Snapshot),
	}
}

// Get returns the current snapshot of t.
func (r *Registry) Get(t graph.UnitType) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snaps[t]
	if !ok {
		return nil, fmt.Errorf("%s: %w", t, ErrTypeNotLoaded)
	}
	return snap, nil
}

// Rebuild reloads every unit type from the source and publishes the new
// graphs atomically. On error the previous graphs stay in place. The shared
// rebuild ignores cancellation of ctx since other callers may have joined it.
func (r *Registry) Rebuild(ctx context.Context) error {
	_, err, shared := r.group.Do("rebuild", func() (interface{}, error) {
		return nil, r.rebuild(context.WithoutCancel(ctx))
	})
	if shared {
		logger.Info("Graph", "Joined in-flight rebuild")
	}
	return err
}

func (r *Registry) rebuild(ctx context.Context) error {
	start := time.Now()
	types := graph.AllUnitTypes()
	built := make([]*Snapshot, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			units, err := r.source.UnitsByType(gctx, t)
			if err != nil {
				return fmt.Errorf("load %s units: %w", t, err)
			}
			if len(units) == 0 {
				return nil
			}
			gr := graph.Build(t, units)
			built[i] = &Snapshot{
				Graph:   gr,
				Index:   suggest.NewIndex(t, gr.Names()),
				BuiltAt: time.Now(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Graph", fmt.Sprintf("Rebuild failed: %v", err))
		return err
	}

	snaps := make(map[graph.UnitType]*Snapshot, len(types))
	logger.Section("Graphs")
	for i, t := range types {
		snap := built[i]
		if snap == nil {
			metrics.GraphNodes.DeleteLabelValues(string(t))
			metrics.GraphEdges.DeleteLabelValues(string(t))
			metrics.GraphComponents.DeleteLabelValues(string(t))
			logger.Stats(string(t), "not loaded")
			continue
		}
		snaps[t] = snap
		st := snap.Graph.Stats()
		metrics.GraphNodes.WithLabelValues(string(t)).Set(float64(st.Nodes))
		metrics.GraphEdges.WithLabelValues(string(t)).Set(float64(st.Edges))
		metrics.GraphComponents.WithLabelValues(string(t)).Set(float64(st.Components))
		logger.Stats(string(t), fmt.Sprintf("%d units, %d borders, %d components", st.Nodes, st.Edges, st.Components))
		if st.DroppedEdges > 0 {
			logger.Warn("Graph", fmt.Sprintf("%s: dropped %d borders to unknown units or self", t, st.DroppedEdges))
		}
		if st.AsymmetricEdges > 0 {
			logger.Warn("Graph", fmt.Sprintf("%s: %d one-way borders", t, st.AsymmetricEdges))
		}
		if err := snap.Graph.Validate(); err != nil {
			logger.Warn("Graph", err.Error())
		}
	}

	r.mu.Lock()
	r.snaps = snaps
	r.mu.Unlock()

	elapsed := time.Since(start)
	metrics.RebuildDuration.Observe(elapsed.Seconds())
	logger.Success("Graph", fmt.Sprintf("Rebuilt %d graphs in %v", len(snaps), elapsed.Round(time.Millisecond)))
	return nil
}

// Status reports every unit type in declaration order.
func (r *Registry) Status() []TypeStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TypeStatus, 0, len(r.snaps))
	for _, t := range graph.AllUnitTypes() {
		st := TypeStatus{Type: t}
		if snap, ok := r.snaps[t]; ok {
			st.Loaded = true
			st.Stats = snap.Graph.Stats()
			st.BuiltAt = snap.BuiltAt.UTC().Format(time.RFC3339)
			if err := snap.Graph.Validate(); err != nil {
				st.Degenerate = err.Error()
			} else {
				st.Playable = true
			}
		}
		out = append(out, st)
	}
	return out
}
