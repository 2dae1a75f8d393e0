package web

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	appLog "jobcal/internal/log"
	"jobcal/internal/model"
	"jobcal/internal/nav"
	"jobcal/internal/schedule"
)

// pxPerUnit is the rendered height of one grid unit.
const pxPerUnit = 20.0

type calendarView struct {
	Title      string
	Timezone   string
	Prev       string
	Next       string
	Today      string
	GridHeight template.CSS
	Hours      []hourView
	Days       []dayView
	Detail     *detailView
	CloseLink  string
}

type hourView struct {
	Label string
	Style template.CSS
}

type dayView struct {
	Label    string
	Link     string
	IsToday  bool
	Selected bool
	Untimed  []eventView
	Timed    []eventView
	NowStyle template.CSS
}

type eventView struct {
	Title    string
	Company  string
	Time     string
	Link     string
	Selected bool
	Style    template.CSS
}

type detailView struct {
	Company     string
	Position    string
	AppliedDate string
	Timeline    []model.TimelineEntry
}

// handleCalendar renders the week grid. Navigation state lives in the
// query string (anchor, selected, event), so every link on the page is a
// plain GET. An optional key is applied through the controller.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := s.now().In(s.loc)

	anchor, err := s.parseDate(q.Get("anchor"), time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "anchor must be YYYY-MM-DD")
		return
	}
	selected, err := s.parseDate(q.Get("selected"), time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "selected must be YYYY-MM-DD")
		return
	}

	snap := s.src.Snapshot()
	var detail *detailView
	ctrl := nav.NewController(
		nav.WithClock(s.now),
		nav.WithLocation(s.loc),
		nav.OnSelectEvent(func(id string) {
			for _, rec := range snap.Records {
				if rec.ID == id {
					detail = &detailView{
						Company:     rec.Company,
						Position:    rec.Position,
						AppliedDate: rec.AppliedDate,
						Timeline:    rec.Timeline,
					}
					return
				}
			}
			appLog.Warn("selected application not found", "source_id", id)
		}),
	)
	ctrl.Restore(nav.Selection{AnchorWeek: anchor, SelectedDate: selected})
	if id := q.Get("event"); id != "" {
		ctrl.SelectEvent(id)
	}

	// A key press is applied once and then redirected to the resulting
	// state, so reloading the page does not repeat it.
	if k := nav.ParseKey(q.Get("key")); k != nav.KeyNone {
		hub := nav.NewHub()
		release := ctrl.Activate(hub)
		defer release()
		hub.Dispatch(k)
		http.Redirect(w, r, selectionLink(ctrl.Selection()), http.StatusSeeOther)
		return
	}

	sel := ctrl.Selection()
	wl := s.cache.Week(snap.Records, sel.AnchorWeek, now)
	view := s.buildView(sel, wl, now, detail)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "calendar.html", view); err != nil {
		appLog.Error("failed to render calendar", err)
	}
}

func (s *Server) buildView(sel nav.Selection, wl schedule.WeekLayout, now time.Time, detail *detailView) calendarView {
	start, end := wl.Window.Days[0], wl.Window.Days[6]
	view := calendarView{
		Title:      fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006")),
		Timezone:   s.loc.String(),
		Prev:       s.transitionLink(sel, nav.KeyLeft),
		Next:       s.transitionLink(sel, nav.KeyRight),
		Today:      s.transitionLink(sel, nav.KeyHome),
		GridHeight: cssf("height: %.1fpx", 24*schedule.UnitsPerHour*pxPerUnit),
		Detail:     detail,
		CloseLink:  selectionLink(nav.Selection{AnchorWeek: sel.AnchorWeek, SelectedDate: sel.SelectedDate}),
	}

	for h := range 24 {
		view.Hours = append(view.Hours, hourView{
			Label: fmt.Sprintf("%02d:00", h),
			Style: cssf("top: %.1fpx", float64(h)*schedule.UnitsPerHour*pxPerUnit),
		})
	}

	for _, day := range wl.Days {
		dv := dayView{
			Label:    day.Date.Format("Mon 1/2"),
			Link:     selectionLink(nav.Selection{AnchorWeek: sel.AnchorWeek, SelectedDate: day.Date, SelectedEvent: sel.SelectedEvent}),
			IsToday:  model.SameDay(day.Date, now),
			Selected: model.SameDay(day.Date, sel.SelectedDate),
		}
		if day.Now != nil {
			dv.NowStyle = cssf("top: %.1fpx", *day.Now*pxPerUnit)
		}
		for _, ev := range day.Untimed {
			dv.Untimed = append(dv.Untimed, eventView{
				Title:    ev.Title,
				Company:  ev.Company,
				Link:     eventLink(sel, ev),
				Selected: ev.SourceID == sel.SelectedEvent,
				Style:    cssf("border-left-color: %s", ev.Color.Hex()),
			})
		}
		for _, p := range day.Timed {
			ev := p.Event
			style := cssf("top: %.1fpx; height: %.1fpx; left: %.0fpx; background: %s",
				p.Top*pxPerUnit, p.Height*pxPerUnit, float64(p.Stack)*8, ev.Color.Hex())
			dv.Timed = append(dv.Timed, eventView{
				Title:    ev.Title,
				Company:  ev.Company,
				Time:     ev.StartTime + "–" + ev.EndTime,
				Link:     eventLink(sel, ev),
				Selected: ev.SourceID == sel.SelectedEvent,
				Style:    style,
			})
		}
		view.Days = append(view.Days, dv)
	}
	return view
}

// transitionLink applies k to a copy of sel and encodes the result.
func (s *Server) transitionLink(sel nav.Selection, k nav.Key) string {
	ctrl := nav.NewController(nav.WithClock(s.now), nav.WithLocation(s.loc))
	ctrl.Restore(sel)
	ctrl.HandleKey(k)
	return selectionLink(ctrl.Selection())
}

func eventLink(sel nav.Selection, ev model.CalendarEvent) string {
	sel.SelectedDate = ev.Day()
	sel.SelectedEvent = ev.SourceID
	return selectionLink(sel)
}

func selectionLink(sel nav.Selection) string {
	q := url.Values{}
	q.Set("anchor", sel.AnchorWeek.Format(time.DateOnly))
	q.Set("selected", sel.SelectedDate.Format(time.DateOnly))
	if sel.SelectedEvent != "" {
		q.Set("event", sel.SelectedEvent)
	}
	return "/calendar?" + q.Encode()
}

func cssf(format string, args ...any) template.CSS {
	return template.CSS(fmt.Sprintf(format, args...))
}
