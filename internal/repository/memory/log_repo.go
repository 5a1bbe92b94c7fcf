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

type trainingLogRepository struct{ store *Store }

// NewTrainingLogRepository creates a session log repository on s.
func NewTrainingLogRepository(s *Store) repository.TrainingLogRepository {
	return &trainingLogRepository{store: s}
}

func (r *trainingLogRepository) Append(ctx context.Context, entry *domain.TrainingLogEntry) (primitive.ObjectID, error) {
	if entry.TraineeID == primitive.NilObjectID || entry.RoutineID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("log entry requires traineeId and routineId")
	}
	if !entry.Kind.IsSessionKind() {
		return primitive.NilObjectID, errors.New("log entry kind must be BASE or EXTRA")
	}
	entry.ID = primitive.NewObjectID()
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now().UTC()
	}
	err := r.store.write(ctx, func(d *dataset) error {
		d.logs = append(d.logs, *entry)
		return nil
	})
	return entry.ID, err
}

func (r *trainingLogRepository) CountByRoutine(ctx context.Context, routineID primitive.ObjectID) (int64, error) {
	var n int64
	r.store.read(ctx, func(d *dataset) {
		for _, e := range d.logs {
			if e.RoutineID == routineID {
				n++
			}
		}
	})
	return n, nil
}

func (r *trainingLogRepository) CountSince(ctx context.Context, traineeID primitive.ObjectID, since time.Time) (int64, error) {
	var n int64
	r.store.read(ctx, func(d *dataset) {
		for _, e := range d.logs {
			if e.TraineeID == traineeID && !e.CompletedAt.Before(since) {
				n++
			}
		}
	})
	return n, nil
}

func (r *trainingLogRepository) ListByTrainee(ctx context.Context, traineeID primitive.ObjectID, ascending bool, limit int64) ([]domain.TrainingLogEntry, error) {
	var out []domain.TrainingLogEntry
	r.store.read(ctx, func(d *dataset) {
		for _, e := range d.logs {
			if e.TraineeID == traineeID {
				out = append(out, e)
			}
		}
	})
	// Stable sort keeps insertion order for identical timestamps.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	if !ascending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type exportRepository struct{ store *Store }

func NewExportRepository(s *Store) repository.ExportRepository {
	return &exportRepository{store: s}
}

func (r *exportRepository) Create(ctx context.Context, export *domain.HistoryExport) (primitive.ObjectID, error) {
	if export.TraineeID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("export requires traineeId and objectKey")
	}
	export.ID = primitive.NewObjectID()
	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now().UTC()
	}
	err := r.store.write(ctx, func(d *dataset) error {
		d.exports = append(d.exports, *export)
		return nil
	})
	return export.ID, err
}

func (r *exportRepository) ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.HistoryExport, error) {
	var out []domain.HistoryExport
	r.store.read(ctx, func(d *dataset) {
		for _, e := range d.exports {
			if e.TraineeID == traineeID {
				out = append(out, e)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
