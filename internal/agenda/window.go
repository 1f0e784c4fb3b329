package agenda

import (
	"time"

	"agendagov/internal/model"
)

type WindowKind int

const (
	WindowDay WindowKind = iota
	WindowWeek
	WindowMonth
	// WindowUpcoming keeps today and everything after it, with no
	// upper bound. Meant to be sorted and truncated by the caller.
	WindowUpcoming
)

// ParseWindowKind maps the wire names used by the calendar views.
func ParseWindowKind(s string) (WindowKind, bool) {
	switch s {
	case "day":
		return WindowDay, true
	case "week":
		return WindowWeek, true
	case "month":
		return WindowMonth, true
	case "upcoming":
		return WindowUpcoming, true
	}
	return 0, false
}

// Window narrows appointments to the date range of kind anchored at
// ref. Comparisons are on civil dates; clock and zone on ref are
// ignored.
func Window(appointments []model.Appointment, ref time.Time, kind WindowKind) []model.Appointment {
	var out []model.Appointment
	switch kind {
	case WindowDay:
		for _, a := range appointments {
			if model.SameDay(a.Date, ref) {
				out = append(out, a)
			}
		}
	case WindowWeek:
		start, end := WeekBounds(ref)
		for _, a := range appointments {
			d := model.Day(a.Date)
			if !d.Before(start) && !d.After(end) {
				out = append(out, a)
			}
		}
	case WindowMonth:
		for _, a := range appointments {
			if a.Date.Year() == ref.Year() && a.Date.Month() == ref.Month() {
				out = append(out, a)
			}
		}
	case WindowUpcoming:
		// strictly after (ref - 1 day): today in, yesterday out
		yesterday := model.Day(ref).AddDate(0, 0, -1)
		for _, a := range appointments {
			if model.Day(a.Date).After(yesterday) {
				out = append(out, a)
			}
		}
	}
	return out
}

// WeekBounds returns the Monday and Sunday of the week containing ref,
// both at midnight UTC.
func WeekBounds(ref time.Time) (start, end time.Time) {
	d := model.Day(ref)
	// Weekday() has Sunday = 0; shift so Monday = 0
	offset := (int(d.Weekday()) + 6) % 7
	start = d.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}
