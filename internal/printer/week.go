// Package printer renders a week layout for the terminal.
package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"jobcal/internal/model"
	"jobcal/internal/schedule"
)

var paletteAttrs = map[model.Color]color.Attribute{
	model.ColorBlue:   color.FgBlue,
	model.ColorGreen:  color.FgGreen,
	model.ColorPurple: color.FgMagenta,
	model.ColorOrange: color.FgYellow,
	model.ColorPink:   color.FgHiMagenta,
	model.ColorTeal:   color.FgCyan,
	model.ColorRed:    color.FgRed,
	model.ColorIndigo: color.FgHiBlue,
}

// Colorize paints s with the terminal color closest to c.
func Colorize(c model.Color, s string) string {
	attr, ok := paletteAttrs[c]
	if !ok {
		return s
	}
	return color.New(attr).Sprint(s)
}

// PrintWeek writes wl as a table: one block per day, untimed events first,
// then timed events in display order. Today's column is marked and carries
// the current time when now falls inside the week.
func PrintWeek(w io.Writer, wl schedule.WeekLayout, now time.Time) error {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	title := color.New(color.FgWhite, color.Italic)

	start, end := wl.Window.Start, wl.Window.Days[6]
	if _, err := title.Fprintf(w, "Week of %s – %s\n\n", start.Format("Mon Jan 2"), end.Format("Mon Jan 2, 2006")); err != nil {
		return err
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("Day"), bold.Sprint("Time"), bold.Sprint("Event"), bold.Sprint("Company"))

	for _, day := range wl.Days {
		label := day.Date.Format("Mon 01-02")
		if day.Now != nil {
			label = bold.Sprint(label + " *")
		}

		rows := 0
		for _, ev := range day.Untimed {
			tbl.AddRow(dayCell(label, rows), faint.Sprint("all day"), ev.Title, Colorize(ev.Color, ev.Company))
			rows++
		}
		for _, p := range day.Timed {
			ev := p.Event
			tbl.AddRow(dayCell(label, rows), ev.StartTime+"-"+ev.EndTime, ev.Title, Colorize(ev.Color, ev.Company))
			rows++
		}
		if day.Now != nil {
			tbl.AddRow(dayCell(label, rows), bold.Sprint(now.In(day.Date.Location()).Format("15:04")), faint.Sprint("── now ──"), "")
			rows++
		}
		if rows == 0 {
			tbl.AddRow(label, "", faint.Sprint("—"), "")
		}
	}

	_, err := fmt.Fprintln(w, tbl)
	return err
}

func dayCell(label string, row int) string {
	if row == 0 {
		return label
	}
	return ""
}
