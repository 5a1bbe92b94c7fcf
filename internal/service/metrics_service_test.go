package service

import (
	"alcyxob/routine-progress/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReplayStreak(t *testing.T) {
	tests := []struct {
		name         string
		days         []int
		cycleLength  int
		wantStreak   int
		wantExpected int
	}{
		{"empty", nil, 3, 0, 1},
		{"in order", []int{1, 2, 3, 1}, 3, 4, 2},
		{"break restarts at mismatch", []int{1, 2, 3, 1, 2, 5}, 3, 1, 1},
		{"restart then continue", []int{2, 3, 1}, 3, 3, 2},
		{"single day cycle", []int{1, 1, 1}, 1, 3, 1},
		{"zero cycle length", []int{1, 1}, 0, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, expected := ReplayStreak(tt.days, tt.cycleLength)
			assert.Equal(t, tt.wantStreak, streak)
			assert.Equal(t, tt.wantExpected, expected)
		})
	}
}

func TestAveragePerWeek(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 5.0, averagePerWeek(10, day, day.AddDate(0, 0, 14)))
	assert.Equal(t, 3.0, averagePerWeek(3, day, day.AddDate(0, 0, 2)))
	assert.Equal(t, 2.33, averagePerWeek(7, day, day.AddDate(0, 0, 21)))
	assert.Equal(t, 1.0, averagePerWeek(1, day, day))
}

func TestMetricsEmptyLog(t *testing.T) {
	f := newFixture(t)

	m, err := f.metrics.Metrics(f.ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, 0, m.TotalCount)
	assert.Equal(t, 0, m.CurrentStreak)
	assert.Nil(t, m.FirstDate)
	assert.Nil(t, m.LastDate)
	assert.Equal(t, 0.0, m.AveragePerWeek)
	assert.Equal(t, 1, m.CycleLength)

	_, err = f.metrics.Metrics(f.ctx, primitive.NilObjectID)
	require.ErrorIs(t, err, ErrInvalidTraineeID)
}

func TestMetricsAfterAWeek(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)
	_, err := f.plan.SetFrequency(f.ctx, trainee, nil, 6, nil)
	require.NoError(t, err)

	f.complete(trainee, domain.DayKindAuto) // Mon, day 1
	f.advanceDays(1)
	f.complete(trainee, domain.DayKindAuto) // Tue, day 2
	f.advanceDays(1)
	f.complete(trainee, domain.DayKindExtra) // Wed
	f.advanceDays(1)
	f.complete(trainee, domain.DayKindAuto) // Thu, day 3

	m, err := f.metrics.Metrics(f.ctx, trainee)
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalCount)
	assert.Equal(t, 4, m.ThisWeekCount)
	assert.Equal(t, 3, m.BasesThisWeek)
	assert.Equal(t, 3, m.CurrentStreak, "EXTRA sessions do not break the streak")
	assert.Equal(t, 3, m.CycleLength)
	assert.Equal(t, 4.0, m.AveragePerWeek)
	require.NotNil(t, m.FirstDate)
	assert.True(t, m.FirstDate.Equal(monday))
	assert.True(t, m.LastDate.Equal(monday.AddDate(0, 0, 3)))

	// A new week has no sessions yet and a stale state does not count.
	f.advanceDays(4)
	m, err = f.metrics.Metrics(f.ctx, trainee)
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalCount)
	assert.Equal(t, 0, m.ThisWeekCount)
	assert.Equal(t, 0, m.BasesThisWeek)
}
