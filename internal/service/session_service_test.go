package service

import (
	"alcyxob/routine-progress/internal/domain"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCompleteWithoutRoutine(t *testing.T) {
	f := newFixture(t)
	trainee := primitive.NewObjectID()

	_, err := f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{})
	require.ErrorIs(t, err, ErrNoActiveRoutine)

	history, err := f.sessions.History(f.ctx, trainee, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCompleteBaseOnExtraDay(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)
	_, err := f.plan.SetFrequency(f.ctx, trainee, nil, 2, nil)
	require.NoError(t, err)

	f.complete(trainee, domain.DayKindBase)
	f.complete(trainee, domain.DayKindBase)
	before := f.state(trainee)

	_, err = f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{Kind: domain.DayKindBase})
	require.ErrorIs(t, err, ErrNotBaseDay)
	kind, _ := KindOf(err)
	assert.Equal(t, KindConflict, kind)

	after := f.state(trainee)
	assert.Equal(t, before.NextBaseDayIndex, after.NextBaseDayIndex)
	assert.Equal(t, before.BasesDoneThisWeek, after.BasesDoneThisWeek)

	history, err := f.sessions.History(f.ctx, trainee, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCompleteExtraLeavesCounters(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)

	rec, err := f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{
		Kind:      domain.DayKindExtra,
		Label:     "  evening run  ",
		Intensity: domain.IntensityLight,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DayKindExtra, rec.Entry.Kind)
	assert.Nil(t, rec.Entry.DayIndex)
	assert.Equal(t, "evening run", rec.Entry.Label)
	assert.Equal(t, domain.IntensityLight, rec.Entry.Intensity)
	assert.Equal(t, 1, rec.Entry.SessionIndex)

	// Still a BASE day with untouched counters.
	assert.Equal(t, domain.DayKindBase, rec.Today.Kind)
	assert.Equal(t, 1, rec.Today.NextBaseDayIndex)
	assert.Equal(t, 0, rec.Today.BasesDoneThisWeek)
	assert.Equal(t, 0, f.state(trainee).BasesDoneThisWeek)
}

func TestPointerWrapsAfterCycle(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)
	_, err := f.plan.SetFrequency(f.ctx, trainee, nil, 6, nil)
	require.NoError(t, err)

	var days []int
	for i := 0; i < 5; i++ {
		rec := f.complete(trainee, domain.DayKindAuto)
		require.Equal(t, domain.DayKindBase, rec.Entry.Kind)
		days = append(days, *rec.Entry.DayIndex)
		assert.Equal(t, i+1, rec.Entry.SessionIndex)
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2}, days)
	assert.Equal(t, 3, f.state(trainee).NextBaseDayIndex)
}

func TestCompleteInputValidation(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)
	f.advanceDays(2) // Wednesday

	_, err := f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{Kind: "SOMETIMES"})
	require.ErrorIs(t, err, ErrInvalidDayKind)

	_, err = f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{Intensity: "EXTREME"})
	require.ErrorIs(t, err, ErrInvalidIntensity)

	tomorrow := f.now.AddDate(0, 0, 1)
	_, err = f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{WorkoutDate: &tomorrow})
	require.ErrorIs(t, err, ErrInvalidWorkoutDate)

	lastWeek := f.now.AddDate(0, 0, -3)
	_, err = f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{WorkoutDate: &lastWeek})
	require.ErrorIs(t, err, ErrInvalidWorkoutDate)

	_, err = f.sessions.CompleteToday(f.ctx, primitive.NilObjectID, nil, CompleteInput{})
	require.ErrorIs(t, err, ErrInvalidTraineeID)

	mondayThisWeek := f.now.AddDate(0, 0, -2)
	rec, err := f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{WorkoutDate: &mondayThisWeek})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", rec.Entry.WorkoutDate.Format(time.DateOnly))
	assert.Equal(t, "2024-06-03", rec.Entry.WeekAnchorDate.Format(time.DateOnly))
}

func TestLongLabelIsTruncated(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)

	long := ""
	for i := 0; i < 200; i++ {
		long += "é"
	}
	rec, err := f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{Label: long})
	require.NoError(t, err)
	assert.Equal(t, maxLabelLength, len([]rune(rec.Entry.Label)))
}

func TestConcurrentCompletionsDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)
	trainee := f.traineeWithRoutine(3)
	_, err := f.plan.SetFrequency(f.ctx, trainee, nil, 6, nil)
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	st := f.state(trainee)
	assert.Equal(t, 6, st.BasesDoneThisWeek)
	assert.Equal(t, 1, st.NextBaseDayIndex)

	history, err := f.sessions.History(f.ctx, trainee, 0)
	require.NoError(t, err)
	require.Len(t, history, workers)
	seen := map[int]bool{}
	bases := 0
	for _, h := range history {
		seen[h.SessionIndex] = true
		if h.Kind == domain.DayKindBase {
			bases++
		}
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, 6, bases)
}

func TestHistoryNewestFirstWithTemplateLabels(t *testing.T) {
	f := newFixture(t)
	trainee := primitive.NewObjectID()
	_, err := f.routines.CreateTemplate(f.ctx, TemplateInput{ExternalKey: "PPL", Name: "Push Pull Legs", Items: pushPullLegs()})
	require.NoError(t, err)
	_, err = f.routines.Assign(f.ctx, trainee, nil, "PPL")
	require.NoError(t, err)

	f.complete(trainee, domain.DayKindAuto)
	f.advanceDays(1)
	f.complete(trainee, domain.DayKindAuto)
	f.advanceDays(1)
	f.complete(trainee, domain.DayKindExtra)

	history, err := f.sessions.History(f.ctx, trainee, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.DayKindExtra, history[0].Kind)
	assert.Equal(t, 2, *history[1].DayIndex)
	assert.Equal(t, 1, *history[2].DayIndex)
	for _, h := range history {
		assert.Equal(t, "PPL", h.TemplateKey)
		assert.Equal(t, "Push Pull Legs", h.TemplateName)
	}

	limited, err := f.sessions.History(f.ctx, trainee, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
