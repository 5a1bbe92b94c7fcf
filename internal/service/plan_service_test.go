package service

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClassifyNewTraineeDefaults(t *testing.T) {
	f := newFixture(t)
	trainee := primitive.NewObjectID()

	c, err := f.plan.ClassifyToday(f.ctx, trainee)
	require.NoError(t, err)
	assert.Equal(t, domain.DayKindBase, c.Kind)
	assert.Equal(t, 3, c.BaseDaysPerWeek)
	assert.Equal(t, 1, c.NextBaseDayIndex)
	assert.Equal(t, 0, c.BasesDoneThisWeek)
	assert.Equal(t, "2024-06-03", c.WeekAnchorDate.Format(time.DateOnly))

	// State is created lazily and persisted.
	st := f.state(trainee)
	assert.Equal(t, 1, st.NextBaseDayIndex)
}

func TestFrequencyThreeProgression(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)
	_, err := f.plan.SetFrequency(f.ctx, trainee, nil, 3, nil)
	require.NoError(t, err)

	c, err := f.plan.ClassifyToday(f.ctx, trainee)
	require.NoError(t, err)
	assert.Equal(t, domain.DayKindBase, c.Kind)
	assert.Equal(t, 3, c.BaseDaysPerWeek)
	assert.Equal(t, 1, c.NextBaseDayIndex)
	assert.Equal(t, 0, c.BasesDoneThisWeek)

	rec := f.complete(trainee, domain.DayKindAuto)
	require.NotNil(t, rec.Entry.DayIndex)
	assert.Equal(t, 1, *rec.Entry.DayIndex)
	assert.Equal(t, 2, rec.Today.NextBaseDayIndex)
	assert.Equal(t, 1, rec.Today.BasesDoneThisWeek)

	f.advanceDays(1)
	f.complete(trainee, domain.DayKindAuto)
	f.advanceDays(1)
	rec = f.complete(trainee, domain.DayKindAuto)
	assert.Equal(t, 3, *rec.Entry.DayIndex)
	assert.Equal(t, 3, rec.Today.BasesDoneThisWeek)
	assert.Equal(t, 1, rec.Today.NextBaseDayIndex)
	assert.Equal(t, domain.DayKindExtra, rec.Today.Kind)

	// Every remaining day of the week is EXTRA.
	for i := 0; i < 4; i++ {
		f.advanceDays(1)
		c, err = f.plan.ClassifyToday(f.ctx, trainee)
		require.NoError(t, err)
		assert.Equal(t, domain.DayKindExtra, c.Kind, f.now.Weekday().String())
	}
}

func TestWeeklyResetKeepsPointer(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(4)

	f.complete(trainee, domain.DayKindAuto)
	f.complete(trainee, domain.DayKindAuto)
	assert.Equal(t, 2, f.state(trainee).BasesDoneThisWeek)

	f.advanceDays(7)
	c, err := f.plan.ClassifyToday(f.ctx, trainee)
	require.NoError(t, err)
	assert.Equal(t, domain.DayKindBase, c.Kind)
	assert.Equal(t, 0, c.BasesDoneThisWeek)
	assert.Equal(t, 3, c.NextBaseDayIndex)
	assert.Equal(t, "2024-06-10", c.WeekAnchorDate.Format(time.DateOnly))

	st := f.state(trainee)
	assert.Equal(t, 0, st.BasesDoneThisWeek)
	assert.True(t, st.WeekAnchorDate.Equal(domain.WeekMonday(f.now)))
}

func TestEnsureStateIdempotent(t *testing.T) {
	f := newFixture(t)
	trainee := primitive.NewObjectID()
	day := domain.DateOf(f.now, time.UTC)

	first, err := f.plan.EnsureState(f.ctx, trainee, day)
	require.NoError(t, err)
	second, err := f.plan.EnsureState(f.ctx, trainee, day)
	require.NoError(t, err)

	assert.Equal(t, first.NextBaseDayIndex, second.NextBaseDayIndex)
	assert.Equal(t, first.BasesDoneThisWeek, second.BasesDoneThisWeek)
	assert.True(t, first.WeekAnchorDate.Equal(second.WeekAnchorDate))
}

func TestClassifyHealsOutOfRangePointer(t *testing.T) {
	f := newFixture(t)

	t.Run("bounded by the snapshot cycle", func(t *testing.T) {
		trainee := f.traineeWithRoutine(3)
		st := f.state(trainee)
		st.NextBaseDayIndex = 7
		require.NoError(t, f.stateRepo.Save(f.ctx, st))

		c, err := f.plan.ClassifyToday(f.ctx, trainee)
		require.NoError(t, err)
		assert.Equal(t, 1, c.NextBaseDayIndex)
		assert.Equal(t, 1, f.state(trainee).NextBaseDayIndex)
	})

	t.Run("snapshot cycle longer than frequency is kept", func(t *testing.T) {
		trainee := f.traineeWithRoutine(5)
		st := f.state(trainee)
		st.NextBaseDayIndex = 5
		require.NoError(t, f.stateRepo.Save(f.ctx, st))

		c, err := f.plan.ClassifyToday(f.ctx, trainee)
		require.NoError(t, err)
		assert.Equal(t, 5, c.NextBaseDayIndex)
	})

	t.Run("bounded by frequency without a snapshot", func(t *testing.T) {
		trainee := primitive.NewObjectID()
		st := domain.NewWeeklyState(trainee, f.now)
		st.NextBaseDayIndex = 4
		require.NoError(t, f.stateRepo.Save(f.ctx, st))

		c, err := f.plan.ClassifyToday(f.ctx, trainee)
		require.NoError(t, err)
		assert.Equal(t, 1, c.NextBaseDayIndex)
	})

	t.Run("missing pointer", func(t *testing.T) {
		trainee := primitive.NewObjectID()
		st := domain.NewWeeklyState(trainee, f.now)
		st.NextBaseDayIndex = 0
		require.NoError(t, f.stateRepo.Save(f.ctx, st))

		c, err := f.plan.ClassifyToday(f.ctx, trainee)
		require.NoError(t, err)
		assert.Equal(t, 1, c.NextBaseDayIndex)
	})
}

func TestSetFrequencyValidation(t *testing.T) {
	f := newFixture(t)
	trainee := primitive.NewObjectID()

	for _, n := range []int{0, 1, 7} {
		_, err := f.plan.SetFrequency(f.ctx, trainee, nil, n, nil)
		require.ErrorIs(t, err, ErrInvalidFrequency, n)
		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, KindInvalid, kind)
	}

	_, err := f.plan.SetFrequency(f.ctx, primitive.NilObjectID, nil, 3, nil)
	require.ErrorIs(t, err, ErrInvalidTraineeID)

	history, err := f.plan.FrequencyHistory(f.ctx, trainee)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestEffectiveBaseDaysFollowsHistory(t *testing.T) {
	f := newFixture(t)
	trainee := primitive.NewObjectID()
	actor := primitive.NewObjectID()

	cfg, err := f.plan.SetFrequency(f.ctx, trainee, &actor, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", cfg.EffectiveFrom.Format(time.DateOnly))
	assert.Equal(t, &actor, cfg.CreatedBy)

	nextMonday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	_, err = f.plan.SetFrequency(f.ctx, trainee, &actor, 5, &nextMonday)
	require.NoError(t, err)

	n, err := f.plan.EffectiveBaseDays(f.ctx, trainee, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = f.plan.EffectiveBaseDays(f.ctx, trainee, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.plan.EffectiveBaseDays(f.ctx, trainee, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, n, "before any history the default applies")

	history, err := f.plan.FrequencyHistory(f.ctx, trainee)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// Setting a frequency creates the weekly state.
	assert.Equal(t, 1, f.state(trainee).NextBaseDayIndex)
}

func TestLoweringFrequencyMidWeekTurnsDayExtra(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)
	_, err := f.plan.SetFrequency(f.ctx, trainee, nil, 4, nil)
	require.NoError(t, err)

	f.complete(trainee, domain.DayKindBase)
	f.complete(trainee, domain.DayKindBase)

	_, err = f.plan.SetFrequency(f.ctx, trainee, nil, 2, nil)
	require.NoError(t, err)

	c, err := f.plan.ClassifyToday(f.ctx, trainee)
	require.NoError(t, err)
	assert.Equal(t, domain.DayKindExtra, c.Kind)
	assert.Equal(t, 2, c.BaseDaysPerWeek)
}

func TestInstantsUsePlanLocation(t *testing.T) {
	f := newFixture(t)
	// 02:00 UTC on Monday is still Sunday evening three hours west.
	f.now = time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC)
	settings := f.settings
	settings.Location = time.FixedZone("UTC-3", -3*60*60)
	plan := NewPlanService(f.configRepo, f.stateRepo, f.routineRepo, f.store, settings, logger.NewNop())
	trainee := primitive.NewObjectID()

	today, err := plan.ClassifyToday(f.ctx, trainee)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-27", today.WeekAnchorDate.Format(time.DateOnly))

	byInstant, err := plan.ClassifyDay(f.ctx, trainee, f.now)
	require.NoError(t, err)
	assert.Equal(t, today.WeekAnchorDate, byInstant.WeekAnchorDate)

	cfg, err := plan.SetFrequency(f.ctx, trainee, nil, 4, &f.now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", cfg.EffectiveFrom.Format(time.DateOnly))

	// Calendar dates are taken as given.
	calendarDay := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	cfg, err = plan.SetFrequency(f.ctx, trainee, nil, 5, &calendarDay)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", cfg.EffectiveFrom.Format(time.DateOnly))
}
