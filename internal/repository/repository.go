package repository

import (
	"alcyxob/routine-progress/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
	// ErrConflict is returned when a transaction could not commit because a
	// concurrent writer held the same trainee.
	ErrConflict = RepositoryError("write conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn atomically. Every mutating use case goes through it.
// Implementations serialize transactions that share a lock key and roll back
// all writes made through the ctx passed to fn when fn returns an error.
type Transactor interface {
	WithinTx(ctx context.Context, lockKey string, fn func(ctx context.Context) error) error
}

// TraineeLockKey is the serialization key for everything a trainee owns.
func TraineeLockKey(traineeID primitive.ObjectID) string {
	return "trainee:" + traineeID.Hex()
}

// TemplateLockKey serializes catalog writes for one external key.
func TemplateLockKey(externalKey string) string {
	return "template:" + externalKey
}

// PlanConfigRepository stores the append-only weekly frequency history.
type PlanConfigRepository interface {
	Append(ctx context.Context, cfg *domain.EffectiveConfig) (primitive.ObjectID, error)
	// GetEffective returns the latest row with EffectiveFrom <= day, or ErrNotFound.
	GetEffective(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*domain.EffectiveConfig, error)
	ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.EffectiveConfig, error)
}

// WeeklyStateRepository stores one progression cursor per trainee.
type WeeklyStateRepository interface {
	Get(ctx context.Context, traineeID primitive.ObjectID) (*domain.WeeklyState, error)
	Save(ctx context.Context, state *domain.WeeklyState) error // upsert
}

// TemplateRepository is the routine catalog.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.RoutineTemplate, items []domain.TemplateItem) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineTemplate, error)
	GetActiveByKey(ctx context.Context, externalKey string) (*domain.RoutineTemplate, error)
	// LatestVersion returns 0 when the key has never been used.
	LatestVersion(ctx context.Context, externalKey string) (int, error)
	DeactivateByKey(ctx context.Context, externalKey string) error
	List(ctx context.Context, activeOnly bool) ([]domain.RoutineTemplate, error)
	ListItems(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateItem, error)
}

// TraineeRoutineRepository stores routine snapshots owned by trainees.
type TraineeRoutineRepository interface {
	Create(ctx context.Context, routine *domain.TraineeRoutine) (primitive.ObjectID, error)
	InsertItems(ctx context.Context, items []domain.TraineeRoutineItem) error
	// DeactivateActive flips every active snapshot of the trainee to inactive.
	DeactivateActive(ctx context.Context, traineeID primitive.ObjectID) (int64, error)
	GetActive(ctx context.Context, traineeID primitive.ObjectID) (*domain.TraineeRoutine, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TraineeRoutine, error)
	// ListItems returns items ordered by (dayIndex, orderIndex).
	ListItems(ctx context.Context, routineID primitive.ObjectID) ([]domain.TraineeRoutineItem, error)
}

// TrainingLogRepository is the append-only session log.
type TrainingLogRepository interface {
	Append(ctx context.Context, entry *domain.TrainingLogEntry) (primitive.ObjectID, error)
	CountByRoutine(ctx context.Context, routineID primitive.ObjectID) (int64, error)
	// ListByTrainee orders by completedAt; limit <= 0 means no limit.
	ListByTrainee(ctx context.Context, traineeID primitive.ObjectID, ascending bool, limit int64) ([]domain.TrainingLogEntry, error)
	CountSince(ctx context.Context, traineeID primitive.ObjectID, since time.Time) (int64, error)
}

// ExportRepository stores metadata about history exports.
type ExportRepository interface {
	Create(ctx context.Context, export *domain.HistoryExport) (primitive.ObjectID, error)
	ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.HistoryExport, error)
}
