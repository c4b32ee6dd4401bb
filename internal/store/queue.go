package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/blackwell-systems/timewise/internal/suggest"
)

// ErrNotQueued is returned when a suggestion is not in the pending queue,
// either because it never was or because it has already been resolved.
var ErrNotQueued = errors.New("suggestion not in pending queue")

// Enqueue inserts a suggestion into the pending queue. The suggestion's own
// ID is the primary key, so re-enqueueing the same suggestion fails.
func (db *DB) Enqueue(runID int64, s suggest.Suggestion) error {
	_, err := db.conn.Exec(
		`INSERT INTO queue
		(id, run_id, type, priority, confidence, title, reason, impact,
		 event_id, proposed_start, proposed_end, source, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, runID, string(s.Type), s.Priority, s.Confidence, s.Title,
		s.Reason, s.Impact, s.EventID, timeText(s.ProposedStart),
		timeText(s.ProposedEnd), s.Source, StatusPending,
		s.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Pending returns queued suggestions awaiting a decision, best first.
func (db *DB) Pending() ([]suggest.Suggestion, error) {
	rows, err := db.conn.Query(
		`SELECT id, type, priority, confidence, title, reason, impact,
		 event_id, proposed_start, proposed_end, source, created_at
		 FROM queue WHERE status = ?
		 ORDER BY priority * confidence DESC, created_at ASC`,
		StatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []suggest.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPending returns a single pending suggestion by ID, or ErrNotQueued.
func (db *DB) GetPending(id string) (suggest.Suggestion, error) {
	row := db.conn.QueryRow(
		`SELECT id, type, priority, confidence, title, reason, impact,
		 event_id, proposed_start, proposed_end, source, created_at
		 FROM queue WHERE id = ? AND status = ?`,
		id, StatusPending,
	)
	s, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return suggest.Suggestion{}, ErrNotQueued
	}
	return s, err
}

// PendingLike reports whether an equivalent pending suggestion already
// exists. Repeated optimization passes over an unchanged calendar dedup
// through this check instead of piling up copies. The title is part of the
// key because informational suggestions share a type and have no event.
func (db *DB) PendingLike(typ, eventID, title string) (bool, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM queue WHERE status = ? AND type = ? AND event_id = ? AND title = ?",
		StatusPending, typ, eventID, title,
	).Scan(&n)
	return n > 0, err
}

// Resolve moves a pending suggestion to a terminal status. The guard on the
// current status makes resolution idempotent-safe: a second resolve of the
// same suggestion returns ErrNotQueued instead of silently overwriting.
func (db *DB) Resolve(id, status string) error {
	res, err := db.conn.Exec(
		"UPDATE queue SET status = ?, resolved_at = ? WHERE id = ? AND status = ?",
		status, time.Now().UTC().Format(time.RFC3339), id, StatusPending,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotQueued
	}
	return nil
}

// ExpireBefore marks pending suggestions created before the cutoff as
// expired and returns how many were affected.
func (db *DB) ExpireBefore(cutoff time.Time) (int64, error) {
	res, err := db.conn.Exec(
		"UPDATE queue SET status = ?, resolved_at = ? WHERE status = ? AND created_at < ?",
		StatusExpired, time.Now().UTC().Format(time.RFC3339),
		StatusPending, cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row scanner) (suggest.Suggestion, error) {
	var s suggest.Suggestion
	var typ, createdAt string
	var impact, eventID, start, end sql.NullString
	if err := row.Scan(&s.ID, &typ, &s.Priority, &s.Confidence, &s.Title,
		&s.Reason, &impact, &eventID, &start, &end, &s.Source, &createdAt); err != nil {
		return suggest.Suggestion{}, err
	}
	s.Type = suggest.Type(typ)
	s.Impact = impact.String
	s.EventID = eventID.String
	s.ProposedStart = parseTimeText(start)
	s.ProposedEnd = parseTimeText(end)
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return s, nil
}

func timeText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimeText(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
