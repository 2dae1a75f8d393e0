package schedule

import (
	"time"

	"jobcal/internal/model"
)

// WeekWindow is the Monday-start, Sunday-end week containing an anchor date.
type WeekWindow struct {
	// Start is Monday 00:00.
	Start time.Time `json:"start"`
	// End is the last instant of Sunday.
	End time.Time `json:"end"`
	// Days are the seven midnights from Start, ascending.
	Days [7]time.Time `json:"days"`
}

// ResolveWeek returns the window containing anchor, in anchor's location.
func ResolveWeek(anchor time.Time) WeekWindow {
	day := model.DateOf(anchor)
	// time.Weekday is Sunday=0; shift so Monday=0.
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)

	var w WeekWindow
	w.Start = start
	for i := range w.Days {
		w.Days[i] = start.AddDate(0, 0, i)
	}
	sunday := w.Days[6]
	w.End = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), sunday.Location())
	return w
}

// Contains reports whether t falls on one of the window's days.
func (w WeekWindow) Contains(t time.Time) bool {
	return w.DayIndex(t) >= 0
}

// DayIndex returns 0 (Monday) .. 6 (Sunday) for t, or -1 when t is outside
// the window.
func (w WeekWindow) DayIndex(t time.Time) int {
	for i, d := range w.Days {
		if model.SameDay(d, t) {
			return i
		}
	}
	return -1
}
