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

type templateRepository struct{ store *Store }

// NewTemplateRepository creates a routine catalog repository on s.
func NewTemplateRepository(s *Store) repository.TemplateRepository {
	return &templateRepository{store: s}
}

func (r *templateRepository) Create(ctx context.Context, tpl *domain.RoutineTemplate, items []domain.TemplateItem) (primitive.ObjectID, error) {
	if tpl.ExternalKey == "" || tpl.Name == "" {
		return primitive.NilObjectID, errors.New("template requires externalKey and name")
	}
	err := r.store.write(ctx, func(d *dataset) error {
		if tpl.Active {
			for _, t := range d.templates {
				if t.Active && t.ExternalKey == tpl.ExternalKey {
					return errors.New("an active template already uses key " + tpl.ExternalKey)
				}
			}
		}
		tpl.ID = primitive.NewObjectID()
		if tpl.CreatedAt.IsZero() {
			tpl.CreatedAt = time.Now().UTC()
		}
		d.templates = append(d.templates, *tpl)
		for i := range items {
			items[i].ID = primitive.NewObjectID()
			items[i].TemplateID = tpl.ID
			d.templateItems = append(d.templateItems, items[i])
		}
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return tpl.ID, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineTemplate, error) {
	return r.find(ctx, func(t domain.RoutineTemplate) bool { return t.ID == id })
}

func (r *templateRepository) GetActiveByKey(ctx context.Context, externalKey string) (*domain.RoutineTemplate, error) {
	return r.find(ctx, func(t domain.RoutineTemplate) bool { return t.Active && t.ExternalKey == externalKey })
}

func (r *templateRepository) LatestVersion(ctx context.Context, externalKey string) (int, error) {
	latest := 0
	r.store.read(ctx, func(d *dataset) {
		for _, t := range d.templates {
			if t.ExternalKey == externalKey && t.Version > latest {
				latest = t.Version
			}
		}
	})
	return latest, nil
}

func (r *templateRepository) DeactivateByKey(ctx context.Context, externalKey string) error {
	return r.store.write(ctx, func(d *dataset) error {
		for i := range d.templates {
			if d.templates[i].ExternalKey == externalKey {
				d.templates[i].Active = false
			}
		}
		return nil
	})
}

func (r *templateRepository) List(ctx context.Context, activeOnly bool) ([]domain.RoutineTemplate, error) {
	var out []domain.RoutineTemplate
	r.store.read(ctx, func(d *dataset) {
		for _, t := range d.templates {
			if !activeOnly || t.Active {
				out = append(out, t)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExternalKey != out[j].ExternalKey {
			return out[i].ExternalKey < out[j].ExternalKey
		}
		return out[i].Version > out[j].Version
	})
	return out, nil
}

func (r *templateRepository) ListItems(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateItem, error) {
	var out []domain.TemplateItem
	r.store.read(ctx, func(d *dataset) {
		for _, it := range d.templateItems {
			if it.TemplateID == templateID {
				out = append(out, it)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return itemLess(out[i].RoutineItem, out[j].RoutineItem) })
	return out, nil
}

func (r *templateRepository) find(ctx context.Context, match func(domain.RoutineTemplate) bool) (*domain.RoutineTemplate, error) {
	var found *domain.RoutineTemplate
	r.store.read(ctx, func(d *dataset) {
		for _, t := range d.templates {
			if match(t) {
				found = &t
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

type traineeRoutineRepository struct{ store *Store }

// NewTraineeRoutineRepository creates a snapshot repository on s.
func NewTraineeRoutineRepository(s *Store) repository.TraineeRoutineRepository {
	return &traineeRoutineRepository{store: s}
}

func (r *traineeRoutineRepository) Create(ctx context.Context, routine *domain.TraineeRoutine) (primitive.ObjectID, error) {
	if routine.TraineeID == primitive.NilObjectID || routine.TemplateID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine requires traineeId and templateId")
	}
	err := r.store.write(ctx, func(d *dataset) error {
		if routine.Active {
			for _, existing := range d.routines {
				if existing.Active && existing.TraineeID == routine.TraineeID {
					return errors.New("trainee already has an active routine")
				}
			}
		}
		routine.ID = primitive.NewObjectID()
		if routine.AssignedAt.IsZero() {
			routine.AssignedAt = time.Now().UTC()
		}
		d.routines = append(d.routines, *routine)
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return routine.ID, nil
}

func (r *traineeRoutineRepository) InsertItems(ctx context.Context, items []domain.TraineeRoutineItem) error {
	return r.store.write(ctx, func(d *dataset) error {
		for i := range items {
			if items[i].RoutineID == primitive.NilObjectID {
				return errors.New("routine item requires routineId")
			}
		}
		for i := range items {
			items[i].ID = primitive.NewObjectID()
			d.routineItems = append(d.routineItems, items[i])
		}
		return nil
	})
}

func (r *traineeRoutineRepository) DeactivateActive(ctx context.Context, traineeID primitive.ObjectID) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(d *dataset) error {
		for i := range d.routines {
			if d.routines[i].TraineeID == traineeID && d.routines[i].Active {
				d.routines[i].Active = false
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *traineeRoutineRepository) GetActive(ctx context.Context, traineeID primitive.ObjectID) (*domain.TraineeRoutine, error) {
	var found *domain.TraineeRoutine
	r.store.read(ctx, func(d *dataset) {
		for _, rt := range d.routines {
			if rt.TraineeID == traineeID && rt.Active && (found == nil || rt.AssignedAt.After(found.AssignedAt)) {
				found = &rt
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *traineeRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TraineeRoutine, error) {
	var found *domain.TraineeRoutine
	r.store.read(ctx, func(d *dataset) {
		for _, rt := range d.routines {
			if rt.ID == id {
				found = &rt
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *traineeRoutineRepository) ListItems(ctx context.Context, routineID primitive.ObjectID) ([]domain.TraineeRoutineItem, error) {
	var out []domain.TraineeRoutineItem
	r.store.read(ctx, func(d *dataset) {
		for _, it := range d.routineItems {
			if it.RoutineID == routineID {
				out = append(out, it)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return itemLess(out[i].RoutineItem, out[j].RoutineItem) })
	return out, nil
}

func itemLess(a, b domain.RoutineItem) bool {
	if a.DayIndex != b.DayIndex {
		return a.DayIndex < b.DayIndex
	}
	return a.OrderIndex < b.OrderIndex
}
