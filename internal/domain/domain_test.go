package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekMonday(t *testing.T) {
	cases := map[string]string{
		"2024-06-03": "2024-06-03", // Monday
		"2024-06-05": "2024-06-03",
		"2024-06-09": "2024-06-03", // Sunday
		"2024-06-10": "2024-06-10",
		"2025-01-01": "2024-12-30", // crosses a year
	}
	for in, want := range cases {
		day, err := time.Parse(time.DateOnly, in)
		require.NoError(t, err)
		assert.Equal(t, want, WeekMonday(day).Format(time.DateOnly), in)
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	instant := time.Date(2024, 6, 4, 1, 30, 0, 0, time.UTC) // still June 3rd at UTC-3

	assert.Equal(t, "2024-06-03", DateOf(instant, loc).Format(time.DateOnly))
	assert.Equal(t, "2024-06-04", DateOf(instant, nil).Format(time.DateOnly))
	assert.Equal(t, time.UTC, DateOf(instant, loc).Location())
}

func TestParseDayKind(t *testing.T) {
	for raw, want := range map[string]DayKind{"": DayKindAuto, "auto": DayKindAuto, " base ": DayKindBase, "Extra": DayKindExtra} {
		got, err := ParseDayKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseDayKind("REST")
	assert.Error(t, err)

	assert.True(t, DayKindBase.IsSessionKind())
	assert.False(t, DayKindAuto.IsSessionKind())
}

func TestParseIntensity(t *testing.T) {
	got, err := ParseIntensity("")
	require.NoError(t, err)
	assert.Equal(t, IntensityNormal, got)

	got, err = ParseIntensity("fuerte")
	require.NoError(t, err)
	assert.Equal(t, IntensityHard, got)

	_, err = ParseIntensity("brutal")
	assert.Error(t, err)
}

func TestParseRoleAliases(t *testing.T) {
	for raw, want := range map[string]Role{
		"CLIENTE":       RoleTrainee,
		"client":        RoleTrainee,
		"PROFE":         RoleCoach,
		"Entrenador":    RoleCoach,
		"COORDINADOR":   RoleCoordinator,
		"ADMINISTRADOR": RoleAdmin,
	} {
		got, ok := ParseRole(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	_, ok := ParseRole("janitor")
	assert.False(t, ok)

	assert.False(t, RoleTrainee.IsStaff())
	assert.True(t, RoleCoordinator.IsStaff())
}

func TestCycleLengthAndNextDay(t *testing.T) {
	items := []RoutineItem{{DayIndex: 1}, {DayIndex: 1}, {DayIndex: 2}, {DayIndex: 3}, {DayIndex: 3}}
	assert.Equal(t, 3, CycleLength(items))
	assert.Equal(t, 1, CycleLength(nil))

	assert.Equal(t, 2, NextDay(1, 3))
	assert.Equal(t, 1, NextDay(3, 3))
	assert.Equal(t, 1, NextDay(5, 3))
}

func TestDaysContiguous(t *testing.T) {
	assert.True(t, DaysContiguous([]RoutineItem{{DayIndex: 2}, {DayIndex: 1}, {DayIndex: 2}}))
	assert.True(t, DaysContiguous(nil))
	assert.False(t, DaysContiguous([]RoutineItem{{DayIndex: 1}, {DayIndex: 3}}))
	assert.False(t, DaysContiguous([]RoutineItem{{DayIndex: 2}}))
}

func TestNormalizeTemplateKey(t *testing.T) {
	assert.Equal(t, "PUSH-PULL-LEGS", NormalizeTemplateKey("  push-pull-legs "))
}
