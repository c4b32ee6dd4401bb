package calendar

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/blackwell-systems/timewise/internal/model"
)

// occurrenceCap bounds recurrence expansion per event.
const occurrenceCap = 1000

// ICS is a calendar collaborator backed by a local .ics file. Listing
// expands recurring events into concrete occurrences inside the requested
// range; mutations rewrite the file. Recurring occurrences themselves are
// read-only (their IDs carry an occurrence suffix).
type ICS struct {
	mu   sync.Mutex
	path string
}

// NewICS creates an ICS-file calendar at the given path. The file does not
// need to exist yet; the first CreateEvent will create it.
func NewICS(path string) *ICS {
	return &ICS{path: path}
}

func (c *ICS) load() (*ical.Calendar, error) {
	body, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		cal := ical.NewCalendar()
		cal.SetProductId("-//blackwell-systems//timewise//EN")
		return cal, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, ErrUnavailable)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.path, err)
	}
	return cal, nil
}

func (c *ICS) save(cal *ical.Calendar) error {
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(cal.Serialize()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, ErrUnavailable)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, ErrUnavailable)
	}
	return nil
}

// ListEvents returns all occurrences intersecting [rangeStart, rangeEnd),
// sorted ascending by start time. The calendarID is ignored: one file is one
// calendar.
func (c *ICS) ListEvents(ctx context.Context, _ string, rangeStart, rangeEnd time.Time) ([]model.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cal, err := c.load()
	if err != nil {
		return nil, err
	}

	var out []model.CalendarEvent
	for _, ve := range cal.Events() {
		out = append(out, expandVEvent(ve, rangeStart, rangeEnd)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// expandVEvent converts one VEVENT into zero or more occurrences within the
// range. Unparseable events are skipped; one bad entry must not hide the rest.
func expandVEvent(ve *ical.VEvent, rangeStart, rangeEnd time.Time) []model.CalendarEvent {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return nil
	}
	end, err := ve.GetEndAt()
	if err != nil || !end.After(start) {
		end = start.Add(time.Hour)
	}

	base := model.CalendarEvent{
		ID:     uidProp.Value,
		Status: model.StatusConfirmed,
		Start:  start,
		End:    end,
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		base.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		base.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		base.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		switch strings.ToUpper(p.Value) {
		case "TENTATIVE":
			base.Status = model.StatusTentative
		case "CANCELLED":
			base.Status = model.StatusCancelled
		}
	}
	for _, att := range ve.Attendees() {
		base.Attendees = append(base.Attendees, att.Email())
	}

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil {
		if overlaps(base.Start, base.End, rangeStart, rangeEnd) {
			return []model.CalendarEvent{base}
		}
		return nil
	}

	rule, err := rrule.StrToRRule(rruleProp.Value)
	if err != nil {
		return nil
	}
	rule.DTStart(start)

	duration := end.Sub(start)
	times := rule.Between(rangeStart.Add(-duration), rangeEnd, true)
	if len(times) > occurrenceCap {
		times = times[:occurrenceCap]
	}

	var out []model.CalendarEvent
	for _, occStart := range times {
		occ := base
		occ.ID = fmt.Sprintf("%s@%s", base.ID, occStart.UTC().Format("20060102T150405Z"))
		occ.Start = occStart
		occ.End = occStart.Add(duration)
		if overlaps(occ.Start, occ.End, rangeStart, rangeEnd) {
			out = append(out, occ)
		}
	}
	return out
}

// CreateEvent appends a VEVENT and rewrites the file.
func (c *ICS) CreateEvent(ctx context.Context, _ string, ev model.CalendarEvent) (model.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return model.CalendarEvent{}, err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Status == "" {
		ev.Status = model.StatusConfirmed
	}
	if !ev.End.After(ev.Start) {
		return model.CalendarEvent{}, fmt.Errorf("event %q: end must be after start", ev.ID)
	}

	cal, err := c.load()
	if err != nil {
		return model.CalendarEvent{}, err
	}

	ve := cal.AddEvent(ev.ID)
	ve.SetDtStampTime(time.Now().UTC())
	fillVEvent(ve, ev)

	if err := c.save(cal); err != nil {
		return model.CalendarEvent{}, err
	}
	return ev, nil
}

// UpdateEvent patches a VEVENT in place and rewrites the file. Occurrences
// of recurring events cannot be updated individually.
func (c *ICS) UpdateEvent(ctx context.Context, _ string, eventID string, patch Patch) (model.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return model.CalendarEvent{}, err
	}
	if strings.Contains(eventID, "@") {
		return model.CalendarEvent{}, fmt.Errorf("update %q: recurring occurrences are read-only", eventID)
	}

	cal, err := c.load()
	if err != nil {
		return model.CalendarEvent{}, err
	}

	for _, ve := range cal.Events() {
		uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
		if uid == nil || uid.Value != eventID {
			continue
		}
		occs := expandVEvent(ve, time.Time{}, time.Unix(1<<62, 0))
		if len(occs) == 0 {
			break
		}
		ev := occs[0]
		applyPatch(&ev, patch)
		if !ev.End.After(ev.Start) {
			return model.CalendarEvent{}, fmt.Errorf("update %q: end must be after start", eventID)
		}
		fillVEvent(ve, ev)
		if err := c.save(cal); err != nil {
			return model.CalendarEvent{}, err
		}
		return ev, nil
	}
	return model.CalendarEvent{}, fmt.Errorf("update %q: %w", eventID, ErrNotFound)
}

// DeleteEvent removes a VEVENT and rewrites the file.
func (c *ICS) DeleteEvent(ctx context.Context, _ string, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	cal, err := c.load()
	if err != nil {
		return err
	}

	kept := cal.Components[:0]
	found := false
	for _, comp := range cal.Components {
		ve, ok := comp.(*ical.VEvent)
		if ok {
			if uid := ve.GetProperty(ical.ComponentPropertyUniqueId); uid != nil && uid.Value == eventID {
				found = true
				continue
			}
		}
		kept = append(kept, comp)
	}
	if !found {
		return fmt.Errorf("delete %q: %w", eventID, ErrNotFound)
	}
	cal.Components = kept
	return c.save(cal)
}

func fillVEvent(ve *ical.VEvent, ev model.CalendarEvent) {
	ve.SetSummary(ev.Title)
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}
	ve.SetStartAt(ev.Start)
	ve.SetEndAt(ev.End)
	switch ev.Status {
	case model.StatusTentative:
		ve.SetStatus(ical.ObjectStatusTentative)
	case model.StatusCancelled:
		ve.SetStatus(ical.ObjectStatusCancelled)
	default:
		ve.SetStatus(ical.ObjectStatusConfirmed)
	}
	for _, email := range ev.Attendees {
		ve.AddAttendee(email)
	}
}
