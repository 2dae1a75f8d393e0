// Package nav holds the week/day navigation state of a calendar view and
// maps logical key presses onto it.
package nav

import (
	"time"

	"jobcal/internal/model"
	"jobcal/internal/schedule"
)

// Selection is the view state: which week is shown, which day is selected
// and which application (if any) the detail view should open.
type Selection struct {
	AnchorWeek   time.Time `json:"anchor_week"`
	SelectedDate time.Time `json:"selected_date"`
	// SelectedEvent is the SourceID of the selected event; empty for none.
	SelectedEvent string `json:"selected_event,omitempty"`
}

// Window returns the week shown for s.
func (s Selection) Window() schedule.WeekWindow {
	return schedule.ResolveWeek(s.AnchorWeek)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for "today" transitions.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLocation sets the zone "today" is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

// OnSelectEvent registers the callback fired by SelectEvent, typically the
// opener of an external detail view.
func OnSelectEvent(fn func(sourceID string)) Option {
	return func(c *Controller) { c.onSelect = fn }
}

// Controller is a synchronous state machine over a Selection. It has a
// single writer (the view's input handler) and needs no locking.
type Controller struct {
	sel      Selection
	now      func() time.Time
	loc      *time.Location
	onSelect func(string)
}

// NewController starts on today's week with today selected.
func NewController(opts ...Option) *Controller {
	c := &Controller{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(c)
	}
	c.GoToToday()
	return c
}

// Restore replaces the state, e.g. from a URL or a saved session. A zero
// AnchorWeek falls back to SelectedDate, and a zero SelectedDate to today.
func (c *Controller) Restore(s Selection) {
	if s.SelectedDate.IsZero() {
		s.SelectedDate = c.today()
	}
	if s.AnchorWeek.IsZero() {
		s.AnchorWeek = s.SelectedDate
	}
	s.AnchorWeek = model.DateOf(s.AnchorWeek)
	s.SelectedDate = model.DateOf(s.SelectedDate)
	c.sel = s
}

// Selection returns a snapshot of the current state.
func (c *Controller) Selection() Selection {
	return c.sel
}

// Window is the currently visible week.
func (c *Controller) Window() schedule.WeekWindow {
	return c.sel.Window()
}

// GoToNextWeek moves the anchor forward seven days; the selected date stays.
func (c *Controller) GoToNextWeek() {
	c.sel.AnchorWeek = c.sel.AnchorWeek.AddDate(0, 0, 7)
}

// GoToPreviousWeek moves the anchor back seven days; the selected date stays.
func (c *Controller) GoToPreviousWeek() {
	c.sel.AnchorWeek = c.sel.AnchorWeek.AddDate(0, 0, -7)
}

// GoToToday anchors the week on today and selects it.
func (c *Controller) GoToToday() {
	today := c.today()
	c.sel.AnchorWeek = today
	c.sel.SelectedDate = today
}

// SelectDate selects d, re-anchoring on it when d is outside the visible week.
func (c *Controller) SelectDate(d time.Time) {
	d = model.DateOf(d)
	c.sel.SelectedDate = d
	if !c.Window().Contains(d) {
		c.sel.AnchorWeek = d
	}
}

// SelectEvent records the selected application and notifies the detail
// view. It never moves the week or the selected date.
func (c *Controller) SelectEvent(sourceID string) {
	c.sel.SelectedEvent = sourceID
	if c.onSelect != nil && sourceID != "" {
		c.onSelect(sourceID)
	}
}

// ClearEvent drops the event selection.
func (c *Controller) ClearEvent() {
	c.sel.SelectedEvent = ""
}

// HandleKey applies the transition bound to k. It reports false for keys
// without a binding.
func (c *Controller) HandleKey(k Key) bool {
	switch k {
	case KeyLeft:
		c.GoToPreviousWeek()
	case KeyRight:
		c.GoToNextWeek()
	case KeyUp:
		c.SelectDate(c.sel.SelectedDate.AddDate(0, 0, -7))
	case KeyDown:
		c.SelectDate(c.sel.SelectedDate.AddDate(0, 0, 7))
	case KeyHome:
		c.GoToToday()
	default:
		return false
	}
	return true
}

func (c *Controller) today() time.Time {
	loc := c.loc
	if loc == nil {
		loc = time.Local
	}
	return model.DateOf(c.now().In(loc))
}
