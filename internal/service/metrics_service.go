package service

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/repository"
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricsService derives analytics from a trainee's session log.
type MetricsService interface {
	Metrics(ctx context.Context, traineeID primitive.ObjectID) (*domain.Metrics, error)
}

// metricsService implements the MetricsService interface. It never writes.
type metricsService struct {
	logRepo     repository.TrainingLogRepository
	routineRepo repository.TraineeRoutineRepository
	stateRepo   repository.WeeklyStateRepository
	settings    Settings
}

// NewMetricsService creates a new instance of metricsService.
func NewMetricsService(
	logRepo repository.TrainingLogRepository,
	routineRepo repository.TraineeRoutineRepository,
	stateRepo repository.WeeklyStateRepository,
	settings Settings,
) MetricsService {
	return &metricsService{
		logRepo:     logRepo,
		routineRepo: routineRepo,
		stateRepo:   stateRepo,
		settings:    settings.withDefaults(),
	}
}

func (s *metricsService) Metrics(ctx context.Context, traineeID primitive.ObjectID) (*domain.Metrics, error) {
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}

	// 1. Cycle length from the active snapshot
	cycleLength := 1
	routine, err := s.routineRepo.GetActive(ctx, traineeID)
	switch {
	case err == nil:
		items, err := s.routineRepo.ListItems(ctx, routine.ID)
		if err != nil {
			return nil, err
		}
		cycleLength = cycleLengthOf(items)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	// 2. BASE sessions this week, from the state if it belongs to this week
	m := &domain.Metrics{CycleLength: cycleLength}
	state, err := s.stateRepo.Get(ctx, traineeID)
	switch {
	case err == nil:
		if state.WeekAnchorDate.Equal(domain.WeekMonday(s.settings.today())) {
			m.BasesThisWeek = state.BasesDoneThisWeek
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	thisWeek, err := s.logRepo.CountSince(ctx, traineeID, s.settings.weekStart())
	if err != nil {
		return nil, err
	}
	m.ThisWeekCount = int(thisWeek)

	// 3. Replay the log
	entries, err := s.logRepo.ListByTrainee(ctx, traineeID, true, 0)
	if err != nil {
		return nil, err
	}
	m.TotalCount = len(entries)
	if m.TotalCount == 0 {
		return m, nil
	}

	days := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.DayIndex != nil { // EXTRA sessions are not part of the cycle
			days = append(days, *e.DayIndex)
		}
	}
	m.CurrentStreak, _ = ReplayStreak(days, cycleLength)

	first, last := entries[0].CompletedAt, entries[len(entries)-1].CompletedAt
	m.FirstDate, m.LastDate = &first, &last
	m.AveragePerWeek = averagePerWeek(m.TotalCount,
		domain.DateOf(first, s.settings.Location), domain.DateOf(last, s.settings.Location))
	return m, nil
}

// averagePerWeek spreads total over the weeks between two calendar days,
// never fewer than one week, rounded to 2 decimals.
func averagePerWeek(total int, firstDay, lastDay time.Time) float64 {
	days := int(lastDay.Sub(firstDay).Hours() / 24)
	weeks := math.Max(1, float64(days)/7)
	return math.Round(float64(total)/weeks*100) / 100
}
