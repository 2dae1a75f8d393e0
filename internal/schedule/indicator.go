package schedule

import (
	"time"

	"jobcal/internal/model"
)

// Indicator returns the current-time marker offset for day, in the same grid
// units as Placement.Top. ok is false unless now falls on day (compared in
// day's location). The caller decides how often to recompute it.
func Indicator(now, day time.Time) (top float64, ok bool) {
	now = now.In(day.Location())
	if !model.SameDay(day, now) {
		return 0, false
	}
	return (float64(now.Hour()) + float64(now.Minute())/60) * UnitsPerHour, true
}
