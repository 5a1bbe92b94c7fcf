package service

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/logger"
	"alcyxob/routine-progress/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanService resolves weekly frequency, maintains weekly state and classifies days.
type PlanService interface {
	// EffectiveBaseDays is the weekly BASE target in force on day.
	EffectiveBaseDays(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (int, error)
	// EnsureState returns the trainee's state for the week containing day,
	// creating or resetting it as needed.
	EnsureState(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*domain.WeeklyState, error)
	ClassifyDay(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*domain.DayClassification, error)
	ClassifyToday(ctx context.Context, traineeID primitive.ObjectID) (*domain.DayClassification, error)
	SetFrequency(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID, baseDays int, effectiveFrom *time.Time) (*domain.EffectiveConfig, error)
	FrequencyHistory(ctx context.Context, traineeID primitive.ObjectID) ([]domain.EffectiveConfig, error)
}

// planService implements the PlanService interface.
type planService struct {
	configRepo  repository.PlanConfigRepository
	stateRepo   repository.WeeklyStateRepository
	routineRepo repository.TraineeRoutineRepository
	tx          repository.Transactor
	settings    Settings
	log         *logger.Logger
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	configRepo repository.PlanConfigRepository,
	stateRepo repository.WeeklyStateRepository,
	routineRepo repository.TraineeRoutineRepository,
	tx repository.Transactor,
	settings Settings,
	log *logger.Logger,
) PlanService {
	return newPlanService(configRepo, stateRepo, routineRepo, tx, settings, log)
}

func newPlanService(
	configRepo repository.PlanConfigRepository,
	stateRepo repository.WeeklyStateRepository,
	routineRepo repository.TraineeRoutineRepository,
	tx repository.Transactor,
	settings Settings,
	log *logger.Logger,
) *planService {
	return &planService{
		configRepo:  configRepo,
		stateRepo:   stateRepo,
		routineRepo: routineRepo,
		tx:          tx,
		settings:    settings.withDefaults(),
		log:         log.With("component", "plan"),
	}
}

// progress is a trainee's weekly state healed for a given day, plus what it
// took to get there. dirty means state differs from what is stored.
type progress struct {
	baseDays    int
	state       *domain.WeeklyState
	routine     *domain.TraineeRoutine // nil without an active snapshot
	cycleLength int
	created     bool
	reset       bool
	healed      bool
	healedFrom  int // the out-of-range pointer that was replaced
}

func (p *progress) dirty() bool {
	return p.created || p.reset || p.healed
}

func (p *progress) classification() *domain.DayClassification {
	kind := domain.DayKindExtra
	if p.state.BasesDoneThisWeek < p.baseDays {
		kind = domain.DayKindBase
	}
	return &domain.DayClassification{
		Kind:              kind,
		BaseDaysPerWeek:   p.baseDays,
		NextBaseDayIndex:  p.state.NextBaseDayIndex,
		BasesDoneThisWeek: p.state.BasesDoneThisWeek,
		WeekAnchorDate:    p.state.WeekAnchorDate,
	}
}

func (s *planService) EffectiveBaseDays(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (int, error) {
	if traineeID == primitive.NilObjectID {
		return 0, ErrInvalidTraineeID
	}
	return s.effectiveBaseDays(ctx, traineeID, s.settings.dateOf(day))
}

func (s *planService) effectiveBaseDays(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (int, error) {
	cfg, err := s.configRepo.GetEffective(ctx, traineeID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.settings.DefaultBaseDays, nil
		}
		return 0, err
	}
	return cfg.BaseDaysPerWeek, nil
}

// resolve computes the healed progress for day without writing anything.
func (s *planService) resolve(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*progress, error) {
	// 1. Weekly target
	n, err := s.effectiveBaseDays(ctx, traineeID, day)
	if err != nil {
		return nil, err
	}
	p := &progress{baseDays: n}

	// 2. Stored state, created or reset for day's week
	p.state, err = s.stateRepo.Get(ctx, traineeID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		p.state = domain.NewWeeklyState(traineeID, day)
		p.created = true
	case err != nil:
		return nil, err
	default:
		if monday := domain.WeekMonday(day); !p.state.WeekAnchorDate.Equal(monday) {
			p.state.WeekAnchorDate = monday
			p.state.BasesDoneThisWeek = 0
			p.reset = true
		}
	}

	// 3. Pointer bound: the active snapshot's cycle, or n without one
	p.cycleLength = n
	p.routine, err = s.routineRepo.GetActive(ctx, traineeID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		p.routine = nil
	case err != nil:
		return nil, err
	default:
		items, err := s.routineRepo.ListItems(ctx, p.routine.ID)
		if err != nil {
			return nil, err
		}
		p.cycleLength = cycleLengthOf(items)
	}

	if next := p.state.NextBaseDayIndex; next < 1 || next > p.cycleLength {
		p.healed = true
		p.healedFrom = next
		p.state.NextBaseDayIndex = 1
	}
	return p, nil
}

// resolveLocked resolves and persists any healing. Callers hold the trainee's transaction.
func (s *planService) resolveLocked(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*progress, error) {
	p, err := s.resolve(ctx, traineeID, day)
	if err != nil {
		return nil, err
	}
	if !p.dirty() {
		return p, nil
	}
	if err := s.stateRepo.Save(ctx, p.state); err != nil {
		return nil, err
	}

	switch {
	case p.created:
		s.log.Debug("Weekly state created", "trainee_id", traineeID.Hex(), "week", p.state.WeekAnchorDate.Format(time.DateOnly))
	case p.reset:
		s.log.Info("Weekly state reset", "trainee_id", traineeID.Hex(), "week", p.state.WeekAnchorDate.Format(time.DateOnly))
	}
	if p.healed {
		s.log.Warn("Day pointer out of range, reset to 1", "trainee_id", traineeID.Hex(), "pointer", p.healedFrom, "cycle_length", p.cycleLength)
	}
	return p, nil
}

// resolveHealed reads without locking and only takes the trainee's
// transaction when the stored state needs to change.
func (s *planService) resolveHealed(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*progress, error) {
	p, err := s.resolve(ctx, traineeID, day)
	if err != nil || !p.dirty() {
		return p, err
	}
	err = s.tx.WithinTx(ctx, repository.TraineeLockKey(traineeID), func(ctx context.Context) error {
		p, err = s.resolveLocked(ctx, traineeID, day)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}
	return p, nil
}

func (s *planService) EnsureState(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*domain.WeeklyState, error) {
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	p, err := s.resolveHealed(ctx, traineeID, s.settings.dateOf(day))
	if err != nil {
		return nil, err
	}
	return p.state, nil
}

func (s *planService) ClassifyDay(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*domain.DayClassification, error) {
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	p, err := s.resolveHealed(ctx, traineeID, s.settings.dateOf(day))
	if err != nil {
		return nil, err
	}
	return p.classification(), nil
}

func (s *planService) ClassifyToday(ctx context.Context, traineeID primitive.ObjectID) (*domain.DayClassification, error) {
	return s.ClassifyDay(ctx, traineeID, s.settings.today())
}

// SetFrequency appends a frequency history row. effectiveFrom defaults to today.
func (s *planService) SetFrequency(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID, baseDays int, effectiveFrom *time.Time) (*domain.EffectiveConfig, error) {
	// 1. Validate Inputs
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	if baseDays < s.settings.MinBaseDays || baseDays > s.settings.MaxBaseDays {
		return nil, fmt.Errorf("%w: got %d, allowed %d..%d", ErrInvalidFrequency, baseDays, s.settings.MinBaseDays, s.settings.MaxBaseDays)
	}
	today := s.settings.today()
	from := today
	if effectiveFrom != nil {
		from = s.settings.dateOf(*effectiveFrom)
	}

	cfg := &domain.EffectiveConfig{
		TraineeID:       traineeID,
		EffectiveFrom:   from,
		BaseDaysPerWeek: baseDays,
		CreatedBy:       actorID,
		CreatedAt:       s.settings.Now().UTC(),
	}

	// 2. Append history and make sure the trainee has a weekly state
	err := s.tx.WithinTx(ctx, repository.TraineeLockKey(traineeID), func(ctx context.Context) error {
		if _, err := s.configRepo.Append(ctx, cfg); err != nil {
			return err
		}
		_, err := s.resolveLocked(ctx, traineeID, today)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}

	s.log.Info("Weekly frequency set", "trainee_id", traineeID.Hex(), "base_days", baseDays, "effective_from", from.Format(time.DateOnly))
	return cfg, nil
}

func (s *planService) FrequencyHistory(ctx context.Context, traineeID primitive.ObjectID) ([]domain.EffectiveConfig, error) {
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	return s.configRepo.ListByTrainee(ctx, traineeID)
}

func cycleLengthOf(items []domain.TraineeRoutineItem) int {
	shared := make([]domain.RoutineItem, len(items))
	for i, it := range items {
		shared[i] = it.RoutineItem
	}
	return domain.CycleLength(shared)
}
