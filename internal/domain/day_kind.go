package domain

import (
	"fmt"
	"strings"
)

// DayKind classifies a training session or a calendar day.
type DayKind string

const (
	// DayKindBase is a scheduled session that advances the day pointer.
	DayKindBase DayKind = "BASE"
	// DayKindExtra is an unscheduled session; it never moves counters.
	DayKindExtra DayKind = "EXTRA"
	// DayKindAuto is only valid as a request: use whatever the day naturally is.
	DayKindAuto DayKind = "AUTO"
)

// ParseDayKind accepts BASE, EXTRA or AUTO in any case. Empty input means AUTO.
func ParseDayKind(raw string) (DayKind, error) {
	switch DayKind(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", DayKindAuto:
		return DayKindAuto, nil
	case DayKindBase:
		return DayKindBase, nil
	case DayKindExtra:
		return DayKindExtra, nil
	default:
		return "", fmt.Errorf("unknown day kind %q", raw)
	}
}

// IsSessionKind reports whether k can be stored on a log entry.
func (k DayKind) IsSessionKind() bool {
	return k == DayKindBase || k == DayKindExtra
}

// Intensity is the trainee's self-reported effort for a session.
type Intensity string

const (
	IntensityLight  Intensity = "LIGHT"
	IntensityNormal Intensity = "NORMAL"
	IntensityHard   Intensity = "HARD"
)

var intensityAliases = map[string]Intensity{
	"":       IntensityNormal,
	"LIGHT":  IntensityLight,
	"LIGERA": IntensityLight,
	"NORMAL": IntensityNormal,
	"HARD":   IntensityHard,
	"FUERTE": IntensityHard,
}

// ParseIntensity defaults to NORMAL when raw is empty.
func ParseIntensity(raw string) (Intensity, error) {
	i, ok := intensityAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown intensity %q", raw)
	}
	return i, nil
}
