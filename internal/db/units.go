package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"borderhopper/internal/graph"
)

// UnitRecord is a stored geographical unit with its boundary and the names
// of the units it borders.
type UnitRecord struct {
	Name      string
	Type      graph.UnitType
	GeoJSON   string
	Neighbors []string
}

// NamedGeometry pairs a unit name with its serialized boundary.
type NamedGeometry struct {
	Name    string `json:"first"`
	GeoJSON string `json:"second"`
}

// SaveUnits replaces every stored unit of type t with records in one
// transaction. Record order is preserved for UnitsByType.
func (d *DB) SaveUnits(ctx context.Context, t graph.UnitType, records []UnitRecord) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save units begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unit_connection WHERE type = ?", t); err != nil {
		return fmt.Errorf("clear connections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM geographical_unit WHERE type = ?", t); err != nil {
		return fmt.Errorf("clear units: %w", err)
	}

	unitStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO geographical_unit (unit_name, type, geojson) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare unit insert: %w", err)
	}
	defer unitStmt.Close()
	connStmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO unit_connection (unit_name, type, neighbor_name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare connection insert: %w", err)
	}
	defer connStmt.Close()

	for _, r := range records {
		if _, err := unitStmt.ExecContext(ctx, r.Name, t, r.GeoJSON); err != nil {
			return fmt.Errorf("insert unit %q: %w", r.Name, err)
		}
	}
	for _, r := range records {
		for _, n := range r.Neighbors {
			if _, err := connStmt.ExecContext(ctx, r.Name, t, n); err != nil {
				return fmt.Errorf("insert connection %q-%q: %w", r.Name, n, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save units commit: %w", err)
	}
	return nil
}

// UnitsByType loads the adjacency lists of type t in insertion order.
func (d *DB) UnitsByType(ctx context.Context, t graph.UnitType) ([]graph.Unit, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT unit_name FROM geographical_unit WHERE type = ? ORDER BY rowid", t)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	var units []graph.Unit
	pos := make(map[string]int)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		pos[name] = len(units)
		units = append(units, graph.Unit{Name: name})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}

	rows, err = d.sql.QueryContext(ctx,
		"SELECT unit_name, neighbor_name FROM unit_connection WHERE type = ? ORDER BY rowid", t)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, neighbor string
		if err := rows.Scan(&name, &neighbor); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		if i, ok := pos[name]; ok {
			units[i].Neighbors = append(units[i].Neighbors, neighbor)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}
	return units, nil
}

// CountByType returns the number of stored units of type t.
func (d *DB) CountByType(ctx context.Context, t graph.UnitType) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM geographical_unit WHERE type = ?", t).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return n, nil
}

// Geometry returns the stored boundary of one unit. ok is false when the
// unit does not exist.
func (d *DB) Geometry(ctx context.Context, t graph.UnitType, name string) (geojson string, ok bool, err error) {
	err = d.sql.QueryRowContext(ctx,
		"SELECT geojson FROM geographical_unit WHERE type = ? AND unit_name = ?", t, name).Scan(&geojson)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query geometry: %w", err)
	}
	return geojson, true, nil
}

// Geometries returns the boundaries of every unit of type t.
func (d *DB) Geometries(ctx context.Context, t graph.UnitType) ([]NamedGeometry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT unit_name, geojson FROM geographical_unit WHERE type = ? ORDER BY rowid", t)
	if err != nil {
		return nil, fmt.Errorf("query geometries: %w", err)
	}
	defer rows.Close()

	out := []NamedGeometry{}
	for rows.Next() {
		var g NamedGeometry
		if err := rows.Scan(&g.Name, &g.GeoJSON); err != nil {
			return nil, fmt.Errorf("scan geometry: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
