// internal/schedule/schedule.go
package schedule

import "time"

// Business hours for advisor follow-up calls.
const (
	dayStartHour = 9
	dayEndHour   = 17

	sessionLength = 30 * time.Minute

	// Stride between slot starts: session plus a 15 minute break.
	slotStride = 45 * time.Minute
)

// NextWorkdays returns the next n weekdays starting from the day after
// `from`, formatted as DD-MM-YYYY. Weekends are skipped. The scan is capped
// at 14 calendar days.
func NextWorkdays(n int, from time.Time) []string {
	out := make([]string, 0, n)
	day := from.AddDate(0, 0, 1)
	for checked := 0; checked < 14 && len(out) < n; checked++ {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, day.Format("02-01-2006"))
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// Slots returns the consultation windows for one business day, each
// formatted "HH:MM - HH:MM". Sessions are half an hour with a quarter-hour
// break between them.
func Slots() []string {
	out := []string{}
	day := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start := day.Add(dayStartHour * time.Hour)
	end := day.Add(dayEndHour * time.Hour)

	for slot := start; slot.Before(end); slot = slot.Add(slotStride) {
		out = append(out, slot.Format("15:04")+" - "+slot.Add(sessionLength).Format("15:04"))
	}
	return out
}

// Availability assembles the booking calendar offered to a respondent.
type Availability struct {
	Dates []string `json:"dates"`
	Slots []string `json:"slots"`
}

// Next returns the bookable days and the daily slot grid.
func Next(days int, from time.Time) Availability {
	return Availability{
		Dates: NextWorkdays(days, from),
		Slots: Slots(),
	}
}
