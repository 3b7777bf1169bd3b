package picker

import "time"

const (
	// DinnerStartHour and DinnerEndHour bound the calendar event, local time.
	DinnerStartHour = 18
	DinnerEndHour   = 20
)

// NextMonday returns midnight of the first Monday strictly after now's date in loc.
// On a Monday it returns the Monday a week later.
func NextMonday(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	daysUntil := int(time.Monday - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+daysUntil, 0, 0, 0, 0, loc)
}

// DinnerWindow returns the start and end of the dinner on date's day in loc.
func DinnerWindow(date time.Time, loc *time.Location) (start, end time.Time) {
	date = date.In(loc)
	y, m, d := date.Date()
	start = time.Date(y, m, d, DinnerStartHour, 0, 0, 0, loc)
	end = time.Date(y, m, d, DinnerEndHour, 0, 0, 0, loc)
	return start, end
}
