package mongo

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planConfigCollectionName = "plan_config_history"

// mongoPlanConfigRepository implements repository.PlanConfigRepository
type mongoPlanConfigRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanConfigRepository creates a new frequency history repository.
func NewMongoPlanConfigRepository(db *mongo.Database) repository.PlanConfigRepository {
	return &mongoPlanConfigRepository{
		collection: db.Collection(planConfigCollectionName),
	}
}

// Append inserts a new history row. Rows are never updated.
func (r *mongoPlanConfigRepository) Append(ctx context.Context, cfg *domain.EffectiveConfig) (primitive.ObjectID, error) {
	if cfg.TraineeID == primitive.NilObjectID || cfg.BaseDaysPerWeek < 1 {
		return primitive.NilObjectID, errors.New("config requires traineeId and a positive baseDaysPerWeek")
	}
	cfg.ID = primitive.NewObjectID()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, cfg); err != nil {
		return primitive.NilObjectID, err
	}
	return cfg.ID, nil
}

// GetEffective finds the row in force on day. Same-day rows resolve to the
// most recently created one.
func (r *mongoPlanConfigRepository) GetEffective(ctx context.Context, traineeID primitive.ObjectID, day time.Time) (*domain.EffectiveConfig, error) {
	var cfg domain.EffectiveConfig
	filter := bson.M{
		"traineeId":     traineeID,
		"effectiveFrom": bson.M{"$lte": day},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "effectiveFrom", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// ListByTrainee returns the full history, oldest first.
func (r *mongoPlanConfigRepository) ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.EffectiveConfig, error) {
	var rows []domain.EffectiveConfig
	opts := options.Find().SetSort(bson.D{{Key: "effectiveFrom", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"traineeId": traineeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// EnsurePlanConfigIndexes creates necessary indexes. Call during startup.
func EnsurePlanConfigIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "effectiveFrom", Value: -1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
