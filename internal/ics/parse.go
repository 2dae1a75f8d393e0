package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "jobcal/internal/log"
	"jobcal/internal/model"
)

// Layouts used for imported timeline dates; the projector parses both.
const (
	timedLayout   = "2006-01-02T15:04"
	allDayLayout  = "2006-01-02"
	icsDateLayout = "20060102"
)

// ParseInvite turns the VEVENTs of an .ics payload (typically an interview
// invitation) into timeline entries, with dates rendered in loc.
//
//   - All-day events (VALUE=DATE or no 'T' in DTSTART) become date-only
//     entries.
//   - Events that fail to parse are logged and skipped.
func ParseInvite(body []byte, loc *time.Location) ([]model.TimelineEntry, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	entries := make([]model.TimelineEntry, 0)
	for _, ve := range cal.Events() {
		entry, perr := parseVEvent(ve, loc)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "uid", propValue(ve, ical.ComponentPropertyUniqueId))
			continue
		}
		entries = append(entries, entry)
	}

	appLog.Info("ics invite parsed", "event_count", len(entries))
	return entries, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.TimelineEntry, error) {
	var out model.TimelineEntry

	out.Title = strings.TrimSpace(propValue(ve, ical.ComponentPropertySummary))
	if out.Title == "" {
		return out, errors.New("missing SUMMARY")
	}
	out.Description = strings.TrimSpace(propValue(ve, ical.ComponentPropertyDescription))
	if where := strings.TrimSpace(propValue(ve, ical.ComponentPropertyLocation)); where != "" {
		if out.Description != "" {
			out.Description += "\n"
		}
		out.Description += "Location: " + where
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return out, errors.New("missing DTSTART")
	}

	if isAllDay(dtStart) {
		d, err := time.ParseInLocation(icsDateLayout, dtStart.Value[:min(len(dtStart.Value), 8)], loc)
		if err != nil {
			return out, err
		}
		out.Date = d.Format(allDayLayout)
		return out, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Date = start.In(loc).Format(timedLayout)
	return out, nil
}

func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}
