package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"jobcal/internal/model"
	"jobcal/internal/schedule"
)

func TestExportFeed(t *testing.T) {
	records := []model.ApplicationRecord{{
		ID:          "app-1",
		Company:     "Acme",
		Position:    "Eng",
		AppliedDate: "2024-03-04",
		Timeline: []model.TimelineEntry{
			{Title: "Interview", Description: "panel", Date: "2024-03-06T14:00"},
		},
	}}
	events := schedule.Project(records, time.UTC)
	stamp := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	out := Export(events, "Job applications", stamp)
	if out != Export(events, "Job applications", stamp) {
		t.Fatalf("export should be reproducible")
	}

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("exported feed does not parse: %v", err)
	}
	ves := cal.Events()
	if len(ves) != 2 {
		t.Fatalf("expected 2 VEVENTs, got %d", len(ves))
	}

	interview := ves[0]
	if got := propValue(interview, ical.ComponentPropertySummary); got != "Interview · Acme" {
		t.Fatalf("summary = %q", got)
	}
	start, err := interview.GetStartAt()
	if err != nil || !start.Equal(time.Date(2024, time.March, 6, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v, %v", start, err)
	}
	if !strings.Contains(propValue(interview, ical.ComponentPropertyDescription), "panel") {
		t.Fatalf("description lost")
	}

	submitted := ves[1]
	dt := submitted.GetProperty(ical.ComponentPropertyDtStart)
	if dt == nil || !isAllDay(dt) || !strings.HasPrefix(dt.Value, "20240304") {
		t.Fatalf("submission should export as all-day, got %+v", dt)
	}

	if EventUID(events[0]) == EventUID(events[1]) {
		t.Fatalf("UIDs must differ per event")
	}
}

const invite = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:one@example.com\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART:20240306T050000Z\r\n" +
	"DTEND:20240306T060000Z\r\n" +
	"SUMMARY:Technical interview\r\n" +
	"LOCATION:Zoom\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:two@example.com\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240308\r\n" +
	"SUMMARY:Take-home due\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:three@example.com\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART:20240309T050000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseInvite(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	entries, err := ParseInvite([]byte(invite), kst)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (one without SUMMARY skipped), got %d: %+v", len(entries), entries)
	}
	if entries[0].Title != "Technical interview" || entries[0].Date != "2024-03-06T14:00" || entries[0].Description != "Location: Zoom" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Title != "Take-home due" || entries[1].Date != "2024-03-08" {
		t.Fatalf("unexpected all-day entry: %+v", entries[1])
	}

	// Imported dates feed straight back into the projector.
	for _, e := range entries {
		if _, _, err := schedule.ParseDate(e.Date, kst); err != nil {
			t.Fatalf("imported date %q does not parse: %v", e.Date, err)
		}
	}
}

func TestParseInviteEmpty(t *testing.T) {
	if _, err := ParseInvite(nil, time.UTC); err == nil {
		t.Fatalf("expected error for empty body")
	}
}
