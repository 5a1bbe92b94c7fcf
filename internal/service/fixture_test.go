package service

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/logger"
	"alcyxob/routine-progress/internal/repository"
	"alcyxob/routine-progress/internal/repository/memory"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// monday is 2024-06-03, 09:00 UTC.
var monday = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t   *testing.T
	ctx context.Context
	now time.Time

	store        *memory.Store
	configRepo   repository.PlanConfigRepository
	stateRepo    repository.WeeklyStateRepository
	templateRepo repository.TemplateRepository
	routineRepo  repository.TraineeRoutineRepository
	logRepo      repository.TrainingLogRepository
	exportRepo   repository.ExportRepository

	settings Settings
	plan     PlanService
	routines RoutineService
	sessions SessionService
	metrics  MetricsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		t:            t,
		ctx:          context.Background(),
		now:          monday,
		store:        store,
		configRepo:   memory.NewPlanConfigRepository(store),
		stateRepo:    memory.NewWeeklyStateRepository(store),
		templateRepo: memory.NewTemplateRepository(store),
		routineRepo:  memory.NewTraineeRoutineRepository(store),
		logRepo:      memory.NewTrainingLogRepository(store),
		exportRepo:   memory.NewExportRepository(store),
	}
	f.settings = Settings{
		DefaultBaseDays: 3,
		MinBaseDays:     2,
		MaxBaseDays:     6,
		Now:             func() time.Time { return f.now },
	}
	log := logger.NewNop()
	f.plan = NewPlanService(f.configRepo, f.stateRepo, f.routineRepo, store, f.settings, log)
	f.routines = NewRoutineService(f.templateRepo, f.routineRepo, f.stateRepo, store, f.settings, log)
	f.sessions = NewSessionService(f.configRepo, f.stateRepo, f.templateRepo, f.routineRepo, f.logRepo, store, f.settings, log)
	f.metrics = NewMetricsService(f.logRepo, f.routineRepo, f.stateRepo, f.settings)
	return f
}

func (f *fixture) advanceDays(n int) {
	f.now = f.now.AddDate(0, 0, n)
}

// publish creates a template with days x perDay items.
func (f *fixture) publish(key string, days, perDay int) *domain.RoutineTemplate {
	f.t.Helper()
	var items []domain.RoutineItem
	for d := 1; d <= days; d++ {
		for o := 0; o < perDay; o++ {
			items = append(items, domain.RoutineItem{DayIndex: d, OrderIndex: o, ExerciseKey: fmt.Sprintf("EX-%d-%d", d, o)})
		}
	}
	tpl, err := f.routines.CreateTemplate(f.ctx, TemplateInput{ExternalKey: key, Name: key + " routine", Items: items})
	require.NoError(f.t, err)
	return tpl
}

// traineeWithRoutine returns a trainee assigned a fresh template of the given cycle length.
func (f *fixture) traineeWithRoutine(cycleLength int) primitive.ObjectID {
	f.t.Helper()
	trainee := primitive.NewObjectID()
	key := fmt.Sprintf("CYCLE-%d-%s", cycleLength, trainee.Hex())
	f.publish(key, cycleLength, 2)
	_, err := f.routines.Assign(f.ctx, trainee, nil, key)
	require.NoError(f.t, err)
	return trainee
}

func (f *fixture) complete(trainee primitive.ObjectID, kind domain.DayKind) *domain.SessionRecord {
	f.t.Helper()
	rec, err := f.sessions.CompleteToday(f.ctx, trainee, nil, CompleteInput{Kind: kind})
	require.NoError(f.t, err)
	return rec
}

func (f *fixture) state(trainee primitive.ObjectID) *domain.WeeklyState {
	f.t.Helper()
	st, err := f.stateRepo.Get(f.ctx, trainee)
	require.NoError(f.t, err)
	return st
}

func intPtr(v int) *int { return &v }
