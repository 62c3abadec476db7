package dateutil

import "time"

// BeginningOfDay returns 00:00:00 UTC of the day containing t.
func BeginningOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BeginningOfWeek returns the most recent Sunday 00:00:00 UTC.
func BeginningOfWeek(t time.Time) time.Time {
	day := BeginningOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// BeginningOfMonth returns the first day of t's month, 00:00:00 UTC.
func BeginningOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextDay returns the next UTC midnight after t.
func NextDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1)
}

// NextMonday returns the next Monday 00:00:00 UTC strictly after t.
func NextMonday(t time.Time) time.Time {
	day := BeginningOfDay(t)
	daysUntilMonday := 8 - int(day.Weekday())
	if day.Weekday() == time.Sunday {
		daysUntilMonday = 1
	}

	return day.AddDate(0, 0, daysUntilMonday)
}

// NextMonth returns the first day of the month after t, 00:00:00 UTC.
func NextMonth(t time.Time) time.Time {
	return BeginningOfMonth(t).AddDate(0, 1, 0)
}

// NextHour returns the next full hour after t.
func NextHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour).Add(time.Hour)
}
