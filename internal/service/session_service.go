package service

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/logger"
	"alcyxob/routine-progress/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxLabelLength = 120

// CompleteInput describes a completed session.
type CompleteInput struct {
	Kind        domain.DayKind   // AUTO when empty
	WorkoutDate *time.Time       // today when nil
	Label       string
	Intensity   domain.Intensity // NORMAL when empty
}

// SessionService records completed sessions and reads the log back.
type SessionService interface {
	CompleteToday(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID, input CompleteInput) (*domain.SessionRecord, error)
	// History returns the log newest first; limit <= 0 returns everything.
	History(ctx context.Context, traineeID primitive.ObjectID, limit int) ([]domain.HistoryEntry, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	plan         *planService
	routineRepo  repository.TraineeRoutineRepository
	templateRepo repository.TemplateRepository
	logRepo      repository.TrainingLogRepository
	stateRepo    repository.WeeklyStateRepository
	tx           repository.Transactor
	settings     Settings
	log          *logger.Logger
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	configRepo repository.PlanConfigRepository,
	stateRepo repository.WeeklyStateRepository,
	templateRepo repository.TemplateRepository,
	routineRepo repository.TraineeRoutineRepository,
	logRepo repository.TrainingLogRepository,
	tx repository.Transactor,
	settings Settings,
	log *logger.Logger,
) SessionService {
	settings = settings.withDefaults()
	return &sessionService{
		plan:         newPlanService(configRepo, stateRepo, routineRepo, tx, settings, log),
		routineRepo:  routineRepo,
		templateRepo: templateRepo,
		logRepo:      logRepo,
		stateRepo:    stateRepo,
		tx:           tx,
		settings:     settings,
		log:          log.With("component", "session"),
	}
}

func (s *sessionService) CompleteToday(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID, input CompleteInput) (*domain.SessionRecord, error) {
	// 1. Validate Inputs
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	requested := input.Kind
	if requested == "" {
		requested = domain.DayKindAuto
	}
	switch requested {
	case domain.DayKindAuto, domain.DayKindBase, domain.DayKindExtra:
	default:
		return nil, ErrInvalidDayKind
	}
	intensity := input.Intensity
	if intensity == "" {
		intensity = domain.IntensityNormal
	}
	switch intensity {
	case domain.IntensityLight, domain.IntensityNormal, domain.IntensityHard:
	default:
		return nil, ErrInvalidIntensity
	}
	label := strings.TrimSpace(input.Label)
	if r := []rune(label); len(r) > maxLabelLength {
		label = string(r[:maxLabelLength])
	}

	now := s.settings.Now()
	today := s.settings.today()
	workoutDate := today
	if input.WorkoutDate != nil {
		workoutDate = s.settings.dateOf(*input.WorkoutDate)
		// Backdating is limited to the current week so it never touches another week's counters.
		if workoutDate.After(today) || workoutDate.Before(domain.WeekMonday(today)) {
			return nil, ErrInvalidWorkoutDate
		}
	}

	var record *domain.SessionRecord
	err := s.tx.WithinTx(ctx, repository.TraineeLockKey(traineeID), func(ctx context.Context) error {
		// 2. Classify under the trainee's lock
		p, err := s.plan.resolveLocked(ctx, traineeID, today)
		if err != nil {
			return err
		}
		if p.routine == nil {
			return ErrNoActiveRoutine
		}
		natural := p.classification().Kind

		// 3. Effective kind
		kind := requested
		switch requested {
		case domain.DayKindAuto:
			kind = natural
		case domain.DayKindBase:
			if natural != domain.DayKindBase {
				return ErrNotBaseDay
			}
		}

		// 4. Advance on BASE
		entry := &domain.TrainingLogEntry{
			TraineeID:      traineeID,
			RoutineID:      p.routine.ID,
			Kind:           kind,
			WorkoutDate:    workoutDate,
			WeekAnchorDate: p.state.WeekAnchorDate,
			Label:          label,
			Intensity:      intensity,
			CompletedAt:    now.UTC(),
			RecordedBy:     actorID,
		}
		if kind == domain.DayKindBase {
			day := p.state.NextBaseDayIndex
			entry.DayIndex = &day
			p.state.BasesDoneThisWeek++
			p.state.NextBaseDayIndex = domain.NextDay(day, p.cycleLength)
		}

		// 5. Append and persist
		count, err := s.logRepo.CountByRoutine(ctx, p.routine.ID)
		if err != nil {
			return err
		}
		entry.SessionIndex = int(count) + 1
		if _, err := s.logRepo.Append(ctx, entry); err != nil {
			return err
		}
		if kind == domain.DayKindBase {
			if err := s.stateRepo.Save(ctx, p.state); err != nil {
				return err
			}
		}

		record = &domain.SessionRecord{Entry: *entry, Today: *p.classification()}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	fields := []interface{}{"trainee_id", traineeID.Hex(), "kind", record.Entry.Kind, "session_index", record.Entry.SessionIndex}
	if record.Entry.DayIndex != nil {
		fields = append(fields, "day_index", *record.Entry.DayIndex, "next_day_index", record.Today.NextBaseDayIndex)
	}
	s.log.Info("Session completed", fields...)
	return record, nil
}

func (s *sessionService) History(ctx context.Context, traineeID primitive.ObjectID, limit int) ([]domain.HistoryEntry, error) {
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	entries, err := s.logRepo.ListByTrainee(ctx, traineeID, false, int64(limit))
	if err != nil {
		return nil, err
	}

	labels := make(map[primitive.ObjectID]routineLabel)
	out := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		l, ok := labels[e.RoutineID]
		if !ok {
			if l, err = s.labelFor(ctx, e.RoutineID); err != nil {
				return nil, err
			}
			labels[e.RoutineID] = l
		}
		out = append(out, domain.HistoryEntry{TrainingLogEntry: e, TemplateKey: l.key, TemplateName: l.name})
	}
	return out, nil
}

// routineLabel names the template a snapshot was copied from.
type routineLabel struct{ key, name string }

func (s *sessionService) labelFor(ctx context.Context, routineID primitive.ObjectID) (routineLabel, error) {
	var l routineLabel
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return l, nil
		}
		return l, err
	}
	tpl, err := s.templateRepo.GetByID(ctx, routine.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return l, nil
		}
		return l, err
	}
	l.key, l.name = tpl.ExternalKey, tpl.Name
	return l, nil
}
