package store

// addStat adds delta to a named counter, creating it on first use.
func (db *DB) addStat(name string, delta float64) error {
	_, err := db.conn.Exec(
		`INSERT INTO stats (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = value + excluded.value`,
		name, delta,
	)
	return err
}

// RecordGenerated bumps the lifetime suggestion counter.
func (db *DB) RecordGenerated(n int) error {
	return db.addStat(statTotalGenerated, float64(n))
}

// RecordRejected bumps the lifetime rejection counter.
func (db *DB) RecordRejected() error {
	return db.addStat(statTotalRejected, 1)
}

// RecordApplied updates the counters an application affects: the applied
// total always, plus the type-specific impact counters.
func (db *DB) RecordApplied(suggestionType string, minutesSaved, focusHours float64) error {
	if err := db.addStat(statTotalApplied, 1); err != nil {
		return err
	}
	if minutesSaved > 0 {
		if err := db.addStat(statMinutesSaved, minutesSaved); err != nil {
			return err
		}
	}
	if focusHours > 0 {
		if err := db.addStat(statFocusHoursProtected, focusHours); err != nil {
			return err
		}
	}
	if suggestionType == "suggest_break" {
		if err := db.addStat(statBurnoutsPrevented, 1); err != nil {
			return err
		}
	}
	return nil
}

// GetStats returns the cumulative counters. Missing counters read as zero.
func (db *DB) GetStats() (Stats, error) {
	rows, err := db.conn.Query("SELECT name, value FROM stats")
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = rows.Close() }()

	var s Stats
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return Stats{}, err
		}
		switch name {
		case statTotalGenerated:
			s.TotalGenerated = int64(value)
		case statTotalApplied:
			s.TotalApplied = int64(value)
		case statTotalRejected:
			s.TotalRejected = int64(value)
		case statMinutesSaved:
			s.MinutesSaved = value
		case statBurnoutsPrevented:
			s.BurnoutsPrevented = int64(value)
		case statFocusHoursProtected:
			s.FocusHoursProtected = value
		}
	}
	return s, rows.Err()
}
