package model

import "time"

// ApplicationRecord is a tracked job application as supplied by the
// application store. Dates are kept as the loosely-typed strings the store
// hands out; parsing happens during projection.
type ApplicationRecord struct {
	ID          string          `json:"id" yaml:"id"`
	Company     string          `json:"company_name" yaml:"company"`
	Position    string          `json:"position" yaml:"position"`
	AppliedDate string          `json:"applied_date,omitempty" yaml:"applied_date,omitempty"`
	Timeline    []TimelineEntry `json:"events,omitempty" yaml:"events,omitempty"`
}

// TimelineEntry is one interview/process step recorded on an application.
type TimelineEntry struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Date        string `json:"date" yaml:"date"`
}

// EventKind distinguishes explicit timeline events from the synthesized
// "application submitted" event.
type EventKind string

const (
	KindTimeline   EventKind = "timeline"
	KindSubmission EventKind = "submission"
)

// SubmissionTitle is the title given to synthesized submission events.
const SubmissionTitle = "Application Submitted"

// CalendarEvent is the immutable projection of a timeline entry or a
// submission date onto calendar coordinates.
type CalendarEvent struct {
	// SourceID references the originating ApplicationRecord (lookup only).
	SourceID string    `json:"source_id"`
	Kind     EventKind `json:"kind"`

	Company     string `json:"company"`
	Position    string `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Start carries the calendar date and, when Timed, the time of day.
	Start time.Time `json:"start"`
	// End is Start+1h for timed events and the zero time otherwise.
	End   time.Time `json:"end,omitzero"`
	Timed bool      `json:"timed"`

	// StartTime / EndTime are "HH:MM", set only when Timed.
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	Color Color `json:"color"`
}

// Day returns the event's calendar date at midnight in its own location.
func (e CalendarEvent) Day() time.Time {
	return DateOf(e.Start)
}

// DateOf truncates t to midnight in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date, comparing
// in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
