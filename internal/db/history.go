package db

import (
	"context"
	"fmt"
	"time"

	"borderhopper/internal/graph"
)

// IngestRecord is one ingestion run of a unit type.
type IngestRecord struct {
	ID          int64          `json:"id"`
	Timestamp   string         `json:"timestamp"`
	Type        graph.UnitType `json:"type"`
	Source      string         `json:"source"`
	Units       int            `json:"units"`
	Connections int            `json:"connections"`
	DurationMs  int64          `json:"duration_ms"`
}

// InsertIngestRun records an ingestion run and returns its ID.
func (d *DB) InsertIngestRun(ctx context.Context, t graph.UnitType, source string, units, connections int, durationMs int64) (int64, error) {
	result, err := d.sql.ExecContext(ctx,
		`INSERT INTO ingest_history (timestamp, type, source, units, connections, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), t, source, units, connections, durationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ingest run: %w", err)
	}
	return result.LastInsertId()
}

// GetIngestRuns returns the last limit ingestion runs, newest first.
func (d *DB) GetIngestRuns(ctx context.Context, limit int) ([]IngestRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, timestamp, type, source, units, connections, duration_ms
		 FROM ingest_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ingest runs: %w", err)
	}
	defer rows.Close()

	out := []IngestRecord{}
	for rows.Next() {
		var r IngestRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Type, &r.Source, &r.Units, &r.Connections, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scan ingest run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
