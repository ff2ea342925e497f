package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"borderhopper/internal/logger"
)

const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// DB wraps a SQLite database connection holding unit records.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	d, err := open(path + pragmas)
	if err != nil {
		return nil, err
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// OpenMemory opens a private in-memory database, used by tests and dry runs.
func OpenMemory() (*DB, error) {
	d, err := open(":memory:" + pragmas)
	if err != nil {
		return nil, err
	}
	// every pooled connection would get its own empty :memory: database
	d.sql.SetMaxOpenConns(1)
	return d, nil
}

func open(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// missing table on a fresh database leaves version at 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS geographical_unit (
				unit_name TEXT NOT NULL,
				type      TEXT NOT NULL,
				geojson   TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (unit_name, type)
			);
			CREATE INDEX IF NOT EXISTS idx_unit_type ON geographical_unit(type);

			CREATE TABLE IF NOT EXISTS unit_connection (
				unit_name     TEXT NOT NULL,
				type          TEXT NOT NULL,
				neighbor_name TEXT NOT NULL,
				PRIMARY KEY (unit_name, type, neighbor_name),
				FOREIGN KEY (unit_name, type)
					REFERENCES geographical_unit(unit_name, type) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_connection_type ON unit_connection(type);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS ingest_history (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp     TEXT NOT NULL,
				type          TEXT NOT NULL,
				source        TEXT NOT NULL,
				units         INTEGER NOT NULL,
				connections   INTEGER NOT NULL,
				duration_ms   INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_ingest_history_ts ON ingest_history(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (ingest history)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
