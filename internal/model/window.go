package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a time-of-day interval, minutes from midnight, half-open
// [Start, End). Windows never cross midnight.
type Window struct {
	Start int // minutes from midnight
	End   int
}

// ParseWindow parses an "HH:MM-HH:MM" interval.
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid window %q: want HH:MM-HH:MM", s)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	if end <= start {
		return Window{}, fmt.Errorf("invalid window %q: end not after start", s)
	}
	return Window{Start: start, End: end}, nil
}

// ParseWindows parses a list of "HH:MM-HH:MM" intervals, skipping entries
// that fail to parse.
func ParseWindows(specs []string) []Window {
	var windows []Window
	for _, s := range specs {
		w, err := ParseWindow(s)
		if err != nil {
			continue
		}
		windows = append(windows, w)
	}
	return windows
}

// ParseClock parses "HH:MM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// Contains reports whether the instant's time-of-day falls inside the window.
func (w Window) Contains(t time.Time) bool {
	mins := t.Hour()*60 + t.Minute()
	return mins >= w.Start && mins < w.End
}

// Minutes returns the window length in minutes.
func (w Window) Minutes() int {
	return w.End - w.Start
}

// String renders the window back to "HH:MM-HH:MM" form.
func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// At anchors the window onto the calendar day of the given instant,
// returning concrete start and end times in that instant's location.
func (w Window) At(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	start := time.Date(y, m, d, w.Start/60, w.Start%60, 0, 0, loc)
	end := time.Date(y, m, d, w.End/60, w.End%60, 0, 0, loc)
	return start, end
}
