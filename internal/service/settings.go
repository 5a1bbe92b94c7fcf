package service

import (
	"alcyxob/routine-progress/internal/domain"
	"time"
)

// Settings carries the plan rules and the clock shared by all services.
type Settings struct {
	DefaultBaseDays int
	MinBaseDays     int
	MaxBaseDays     int
	// Location decides where calendar days start and end.
	Location *time.Location
	// Now is replaced in tests.
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.DefaultBaseDays == 0 {
		s.DefaultBaseDays = domain.DefaultBaseDaysPerWeek
	}
	if s.MinBaseDays == 0 {
		s.MinBaseDays = 2
	}
	if s.MaxBaseDays == 0 {
		s.MaxBaseDays = 6
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// today is the current calendar day in the configured location.
func (s Settings) today() time.Time {
	return domain.DateOf(s.Now(), s.Location)
}

// dateOf maps a caller-supplied value to a calendar day. Values already in
// calendar-date form pass through; other instants are read in Location.
func (s Settings) dateOf(t time.Time) time.Time {
	if domain.IsCalendarDate(t) {
		return t
	}
	return domain.DateOf(t, s.Location)
}

// weekStart is the instant the current week began, in the configured location.
func (s Settings) weekStart() time.Time {
	m := domain.WeekMonday(s.today())
	return time.Date(m.Year(), m.Month(), m.Day(), 0, 0, 0, 0, s.Location)
}
