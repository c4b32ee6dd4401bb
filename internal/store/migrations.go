package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at     TEXT NOT NULL,
			finished_at    TEXT,
			triggered_by   TEXT NOT NULL,
			events_scanned INTEGER NOT NULL DEFAULT 0,
			generated      INTEGER NOT NULL DEFAULT 0,
			auto_applied   INTEGER NOT NULL DEFAULT 0,
			queued         INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS queue (
			id             TEXT PRIMARY KEY,
			run_id         INTEGER REFERENCES runs(id),
			type           TEXT NOT NULL,
			priority       INTEGER NOT NULL,
			confidence     REAL NOT NULL,
			title          TEXT NOT NULL,
			reason         TEXT NOT NULL,
			impact         TEXT,
			event_id       TEXT,
			proposed_start TEXT,
			proposed_end   TEXT,
			source         TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'pending',
			created_at     TEXT NOT NULL,
			resolved_at    TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS stats (
			name  TEXT PRIMARY KEY,
			value REAL NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_queue_status ON queue(status)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_run ON queue(run_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
