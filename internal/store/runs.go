package store

import (
	"database/sql"
	"time"
)

// CreateRun inserts a new run record and returns its ID.
func (db *DB) CreateRun(trigger string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO runs (started_at, triggered_by) VALUES (?, ?)",
		time.Now().UTC().Format(time.RFC3339), trigger,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// FinishRun records the outcome of a run.
func (db *DB) FinishRun(id int64, eventsScanned, generated, autoApplied, queued int) error {
	_, err := db.conn.Exec(
		`UPDATE runs SET finished_at = ?, events_scanned = ?, generated = ?,
		 auto_applied = ?, queued = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339),
		eventsScanned, generated, autoApplied, queued, id,
	)
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT id, started_at, finished_at, triggered_by, events_scanned,
		 generated, auto_applied, queued
		 FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var finished sql.NullString
		if err := rows.Scan(&r.ID, &started, &finished, &r.TriggeredBy,
			&r.EventsScanned, &r.Generated, &r.AutoApplied, &r.Queued); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt = parseTimeText(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
