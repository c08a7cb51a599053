// Package dates holds the small calendar helpers the pipeline keys its
// partitions on. All dates are treated as naive calendar days (UTC midnight).
package dates

import "time"

// DayFormat is the wire format for snapshot dates and month keys.
const DayFormat = "2006-01-02"

// AddMonths shifts date by delta calendar months, clamping the day of month
// to the last day of the target month instead of rolling over (unlike
// time.Time.AddDate, which would turn Jan 31 + 1 month into Mar 2/3).
func AddMonths(date time.Time, delta int) time.Time {
	year := date.Year()
	month := int(date.Month()) + delta

	for month > 12 {
		year++
		month -= 12
	}
	for month < 1 {
		year--
		month += 12
	}

	day := date.Day()
	if last := daysIn(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// FirstOfMonth truncates date to the first day of its month.
func FirstOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD day string.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayFormat, s)
}

// FormatDay renders a time as a YYYY-MM-DD day string.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
