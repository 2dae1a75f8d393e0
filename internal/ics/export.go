// Package ics exports projected calendar events as an iCalendar feed and
// imports interview invitations as timeline entries.
package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"jobcal/internal/model"
)

const productID = "-//jobcal//application calendar//EN"

// Export renders events as a PUBLISH calendar. stamp is used for DTSTAMP so
// output is reproducible for a fixed input.
func Export(events []model.CalendarEvent, name string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		ve := cal.AddEvent(EventUID(ev))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetSummary(summary(ev))
		if desc := description(ev); desc != "" {
			ve.SetDescription(desc)
		}
		if ev.Company != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, ev.Company)
		}
		ve.SetProperty(ical.ComponentProperty("COLOR"), string(ev.Color))

		if ev.Timed {
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
			continue
		}
		day := model.DateOf(ev.Start)
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}

	return cal.Serialize()
}

// EventUID is a stable identifier for ev across exports.
func EventUID(ev model.CalendarEvent) string {
	h := sha256.New()
	for _, part := range []string{ev.SourceID, string(ev.Kind), ev.Title, ev.Start.UTC().Format(time.RFC3339)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:12]) + "@jobcal"
}

func summary(ev model.CalendarEvent) string {
	if ev.Company == "" {
		return ev.Title
	}
	return ev.Title + " · " + ev.Company
}

func description(ev model.CalendarEvent) string {
	parts := make([]string, 0, 2)
	if ev.Position != "" {
		parts = append(parts, "Position: "+ev.Position)
	}
	if ev.Description != "" {
		parts = append(parts, ev.Description)
	}
	return strings.Join(parts, "\n")
}
