package memory

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type planConfigRepository struct{ store *Store }

// NewPlanConfigRepository creates a frequency history repository on s.
func NewPlanConfigRepository(s *Store) repository.PlanConfigRepository {
	return &planConfigRepository{store: s}
}

func (r *planConfigRepository) Append(ctx context.Context, cfg *domain.EffectiveConfig) (primitive.ObjectID, error) {
	if cfg.TraineeID == primitive.NilObjectID || cfg.BaseDaysPerWeek < 1 {
		return primitive.NilObjectID, errors.New("config requires traineeId and a positive baseDaysPerWeek")
	}
	cfg.ID = primitive.NewObjectID()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	err := r.store.write(ctx, func(d *dataset) error {
		d.configs = append(d.configs, *cfg)
		return nil
	})
	return cfg.ID, err
}

func (r *planConfigRepository) GetEffective(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*domain.EffectiveConfig, error) {
	var found *domain.EffectiveConfig
	r.store.read(ctx, func(d *dataset) {
		// Later rows win ties, matching insertion order.
		for i := range d.configs {
			c := d.configs[i]
			if c.TraineeID != traineeID || c.EffectiveFrom.After(day) {
				continue
			}
			if found == nil || !c.EffectiveFrom.Before(found.EffectiveFrom) {
				found = &c
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *planConfigRepository) ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.EffectiveConfig, error) {
	var rows []domain.EffectiveConfig
	r.store.read(ctx, func(d *dataset) {
		for _, c := range d.configs {
			if c.TraineeID == traineeID {
				rows = append(rows, c)
			}
		}
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].EffectiveFrom.Before(rows[j].EffectiveFrom) })
	return rows, nil
}

type weeklyStateRepository struct{ store *Store }

func NewWeeklyStateRepository(s *Store) repository.WeeklyStateRepository {
	return &weeklyStateRepository{store: s}
}

func (r *weeklyStateRepository) Get(ctx context.Context, traineeID primitive.ObjectID) (*domain.WeeklyState, error) {
	var (
		state domain.WeeklyState
		ok    bool
	)
	r.store.read(ctx, func(d *dataset) { state, ok = d.states[traineeID] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &state, nil
}

func (r *weeklyStateRepository) Save(ctx context.Context, state *domain.WeeklyState) error {
	if state.TraineeID == primitive.NilObjectID {
		return errors.New("weekly state requires traineeId")
	}
	state.UpdatedAt = time.Now().UTC()
	return r.store.write(ctx, func(d *dataset) error {
		d.states[state.TraineeID] = *state
		return nil
	})
}
