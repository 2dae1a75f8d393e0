// Package schedule turns application records into a weekly time grid:
// event projection, week windows, per-day layout and the "now" marker.
// Everything here is a pure function of its inputs; callers own clocks
// and memoization (see Cache).
package schedule

import (
	"time"

	appLog "jobcal/internal/log"
	"jobcal/internal/model"
)

const clockLayout = "15:04"

// Projector maps ApplicationRecords into CalendarEvents.
type Projector struct {
	// Palette is cycled in first-seen company order. Empty means
	// model.DefaultPalette.
	Palette []model.Color
	// Location is the display timezone dates are parsed into. Nil means
	// time.Local.
	Location *time.Location
}

// Project produces the flat event list for records, in record order and,
// within a record, timeline entries first followed by the submission event.
// Entries whose date does not parse are logged and skipped.
func (p Projector) Project(records []model.ApplicationRecord) []model.CalendarEvent {
	palette := p.Palette
	if len(palette) == 0 {
		palette = model.DefaultPalette
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	colors := make(map[string]model.Color)
	events := make([]model.CalendarEvent, 0, len(records)*2)

	for _, rec := range records {
		color, seen := colors[rec.Company]
		if !seen {
			color = palette[len(colors)%len(palette)]
			colors[rec.Company] = color
		}

		for _, entry := range rec.Timeline {
			start, timed, err := ParseDate(entry.Date, loc)
			if err != nil {
				appLog.Warn("calendar: skipping timeline entry with malformed date",
					"source_id", rec.ID,
					"title", entry.Title,
					"value", entry.Date,
					"err", err,
				)
				continue
			}
			events = append(events, newEvent(rec, model.KindTimeline, entry.Title, entry.Description, start, timed, color))
		}

		if rec.AppliedDate == "" {
			continue
		}
		start, timed, err := ParseDate(rec.AppliedDate, loc)
		if err != nil {
			appLog.Warn("calendar: skipping malformed applied date",
				"source_id", rec.ID,
				"value", rec.AppliedDate,
				"err", err,
			)
			continue
		}
		events = append(events, newEvent(rec, model.KindSubmission, model.SubmissionTitle, "", start, timed, color))
	}

	appLog.Debug("calendar: projection completed", "records", len(records), "events", len(events), "companies", len(colors))
	return events
}

// Project is Projector{Location: loc}.Project(records) with the default palette.
func Project(records []model.ApplicationRecord, loc *time.Location) []model.CalendarEvent {
	return Projector{Location: loc}.Project(records)
}

func newEvent(rec model.ApplicationRecord, kind model.EventKind, title, desc string, start time.Time, timed bool, color model.Color) model.CalendarEvent {
	ev := model.CalendarEvent{
		SourceID:    rec.ID,
		Kind:        kind,
		Company:     rec.Company,
		Position:    rec.Position,
		Title:       title,
		Description: desc,
		Start:       start,
		Timed:       timed,
		Color:       color,
	}
	if timed {
		ev.End = start.Add(time.Hour)
		ev.StartTime = start.Format(clockLayout)
		ev.EndTime = ev.End.Format(clockLayout)
	}
	return ev
}
