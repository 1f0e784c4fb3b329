package agenda

import (
	"sort"

	"agendagov/internal/model"
)

// Sort returns appointments in canonical calendar order: pending before
// completed, then by date, then by time of day. The time comparison is
// plain string ordering, valid because Time is fixed-width "HH:MM".
// The sort is stable so repeated calls over an unchanged store produce
// identical output.
func Sort(appointments []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, len(appointments))
	copy(out, appointments)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		ad, bd := model.Day(a.Date), model.Day(b.Date)
		if !ad.Equal(bd) {
			return ad.Before(bd)
		}
		return a.Time < b.Time
	})
	return out
}
