package domain

import "time"

// DateOf returns the calendar day of t in loc, as midnight UTC.
// All stored day values (anchors, effective dates, workout dates) use this form.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsCalendarDate reports whether t is already in DateOf form.
func IsCalendarDate(t time.Time) bool {
	return t.Location() == time.UTC && t.Equal(DateOf(t, time.UTC))
}

// WeekMonday returns the Monday starting the ISO week that contains day.
func WeekMonday(day time.Time) time.Time {
	day = DateOf(day, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DateOf(a, time.UTC).Equal(DateOf(b, time.UTC))
}
