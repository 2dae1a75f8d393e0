package schedule

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"jobcal/internal/model"
)

// Grid geometry, in grid units.
const (
	UnitsPerHour = 3.0
	// MinHeight keeps short or zero-length events legible.
	MinHeight = 1.5
	// StackStep is added to Top per earlier event sharing the same start time.
	StackStep = 0.5
)

// Placement positions one timed event on a day column.
type Placement struct {
	Event  model.CalendarEvent `json:"event"`
	Top    float64             `json:"top"`
	Height float64             `json:"height"`
	// Stack is the event's rank among same-start events of the day.
	Stack int `json:"stack"`
}

// DayLayout is one column of the week grid.
type DayLayout struct {
	Date time.Time `json:"date"`
	// Timed placements in display order (start date, then start time).
	Timed []Placement `json:"timed"`
	// Untimed events keep their list order and never get a grid position.
	Untimed []model.CalendarEvent `json:"untimed"`
	// Now is the live indicator offset; set only on today's column.
	Now *float64 `json:"now,omitempty"`
}

// WeekLayout is the full grid for one WeekWindow.
type WeekLayout struct {
	Window WeekWindow  `json:"window"`
	Days   []DayLayout `json:"days"`
}

// LayoutDay positions the events that start on day. Events on other days
// are ignored. Stacking ranks follow the input order; the returned Timed
// slice is then sorted for display.
func LayoutDay(day time.Time, events []model.CalendarEvent) DayLayout {
	out := DayLayout{
		Date:    model.DateOf(day),
		Timed:   []Placement{},
		Untimed: []model.CalendarEvent{},
	}

	seen := make(map[string]int)
	for _, ev := range events {
		if !model.SameDay(out.Date, ev.Start) {
			continue
		}
		if !ev.Timed {
			out.Untimed = append(out.Untimed, ev)
			continue
		}
		top, height, ok := Position(ev.StartTime, ev.EndTime)
		if !ok {
			out.Untimed = append(out.Untimed, ev)
			continue
		}
		rank := seen[ev.StartTime]
		seen[ev.StartTime] = rank + 1

		out.Timed = append(out.Timed, Placement{
			Event:  ev,
			Top:    top + float64(rank)*StackStep,
			Height: height,
			Stack:  rank,
		})
	}

	slices.SortStableFunc(out.Timed, func(a, b Placement) int {
		if c := a.Event.Start.Compare(b.Event.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Event.StartTime, b.Event.StartTime)
	})
	return out
}

// Position converts "HH:MM" start/end strings into a top offset and height.
// An empty end means start plus one hour. The duration is taken from the
// clock readings alone, so an end past midnight falls back to MinHeight.
func Position(start, end string) (top, height float64, ok bool) {
	sh, sm, ok := parseClock(start)
	if !ok {
		return 0, 0, false
	}
	eh, em := sh+1, sm
	if end != "" {
		if eh, em, ok = parseClock(end); !ok {
			return 0, 0, false
		}
	}

	top = (float64(sh) + float64(sm)/60) * UnitsPerHour
	duration := float64(eh-sh) + float64(em-sm)/60
	height = max(duration*UnitsPerHour, MinHeight)
	return top, height, true
}

// BuildWeek lays out every event that falls inside the week around anchor.
// now drives the live indicator on today's column, if today is in the week.
func BuildWeek(events []model.CalendarEvent, anchor, now time.Time) WeekLayout {
	window := ResolveWeek(anchor)

	buckets := make([][]model.CalendarEvent, len(window.Days))
	for _, ev := range events {
		if i := window.DayIndex(ev.Start); i >= 0 {
			buckets[i] = append(buckets[i], ev)
		}
	}

	days := make([]DayLayout, len(window.Days))
	for i, d := range window.Days {
		days[i] = LayoutDay(d, buckets[i])
		if top, ok := Indicator(now, d); ok {
			days[i].Now = &top
		}
	}
	return WeekLayout{Window: window, Days: days}
}

func parseClock(s string) (h, m int, ok bool) {
	hs, ms, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err = strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
