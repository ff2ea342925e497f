// Package ingest loads precomputed adjacency datasets into the unit store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"borderhopper/internal/db"
	"borderhopper/internal/graph"
	"borderhopper/internal/logger"
	"borderhopper/internal/metrics"
)

// Store is the persistence the loader writes to.
type Store interface {
	CountByType(ctx context.Context, t graph.UnitType) (int, error)
	SaveUnits(ctx context.Context, t graph.UnitType, records []db.UnitRecord) error
	InsertIngestRun(ctx context.Context, t graph.UnitType, source string, units, connections int, durationMs int64) (int64, error)
}

// Result describes what happened to one dataset.
type Result struct {
	Type        graph.UnitType `json:"type"`
	Source      string         `json:"source"`
	Units       int            `json:"units"`
	Connections int            `json:"connections"`
	Dropped     int            `json:"dropped"`
	Skipped     string         `json:"skipped,omitempty"`
}

// Loader ingests the datasets found in a data directory.
type Loader struct {
	store    Store
	datasets []Dataset
}

// NewLoader creates a Loader for the default Datasets.
func NewLoader(store Store) *Loader {
	return &Loader{store: store, datasets: Datasets}
}

// Run loads every dataset present in dir. Missing files are skipped with a
// warning; parse and integrity errors abort the run. Types that already have
// stored units are left alone unless force is set.
func (l *Loader) Run(ctx context.Context, dir string, force bool) ([]Result, error) {
	logger.Section("Ingest")
	cache := make(map[string][]Feature)
	results := make([]Result, 0, len(l.datasets))

	for _, ds := range l.datasets {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := l.runDataset(ctx, dir, ds, force, cache)
		if err != nil {
			logger.Error("Ingest", fmt.Sprintf("%s: %v", ds.Type, err))
			return results, fmt.Errorf("ingest %s: %w", ds.Type, err)
		}
		results = append(results, res)
		if res.Skipped != "" {
			logger.Stats(string(ds.Type), "skipped ("+res.Skipped+")")
			continue
		}
		logger.Stats(string(ds.Type), fmt.Sprintf("%d units, %d borders", res.Units, res.Connections))
	}
	return results, nil
}

func (l *Loader) runDataset(ctx context.Context, dir string, ds Dataset, force bool, cache map[string][]Feature) (Result, error) {
	res := Result{Type: ds.Type, Source: ds.File}

	if !force {
		n, err := l.store.CountByType(ctx, ds.Type)
		if err != nil {
			return res, err
		}
		if n > 0 {
			res.Skipped = "already present"
			return res, nil
		}
	}

	start := time.Now()
	var (
		records []db.UnitRecord
		err     error
	)
	if ds.Base != "" {
		records, err = l.loadComposites(dir, ds, cache)
	} else {
		var features []Feature
		features, err = l.features(dir, ds.File, ds, cache)
		if err == nil {
			records, res.Dropped = BuildRecords(ds.Type, features, ds.Forbidden)
			if res.Dropped > 0 {
				logger.Warn("Ingest", fmt.Sprintf("%s: dropped %d neighbor entries", ds.Type, res.Dropped))
			}
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ingest", fmt.Sprintf("%s: %v", ds.Type, err))
		res.Skipped = "file missing"
		return res, nil
	}
	if err != nil {
		return res, err
	}

	if err := l.store.SaveUnits(ctx, ds.Type, records); err != nil {
		return res, err
	}
	res.Units = len(records)
	res.Connections = countConnections(records)
	elapsed := time.Since(start)
	if _, err := l.store.InsertIngestRun(ctx, ds.Type, ds.File, res.Units, res.Connections, elapsed.Milliseconds()); err != nil {
		logger.Warn("Ingest", fmt.Sprintf("record ingest run: %v", err))
	}
	metrics.IngestedUnits.WithLabelValues(string(ds.Type)).Add(float64(res.Units))
	return res, nil
}

// features parses a FeatureCollection once per file and dataset naming.
func (l *Loader) features(dir, file string, ds Dataset, cache map[string][]Feature) ([]Feature, error) {
	key := file + "\x00" + ds.NameProperty
	if f, ok := cache[key]; ok {
		return f, nil
	}
	f, err := ReadFeatures(filepath.Join(dir, file), ds.NameProperty, ds.Rename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	cache[key] = f
	return f, nil
}

func (l *Loader) loadComposites(dir string, ds Dataset, cache map[string][]Feature) ([]db.UnitRecord, error) {
	file, err := os.Open(filepath.Join(dir, ds.File))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	composites, err := ParseComposites(file, ds.Rename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.File, err)
	}
	base, err := l.features(dir, ds.Base, ds, cache)
	if err != nil {
		return nil, err
	}
	records, uncovered, err := BuildComposites(ds.Type, composites, base)
	if err != nil {
		return nil, err
	}
	for _, name := range uncovered {
		logger.Warn("Ingest", fmt.Sprintf("%s: %s is not part of any composite", ds.Type, name))
	}
	return records, nil
}
