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

const trainingLogCollectionName = "training_logs"

// mongoTrainingLogRepository implements repository.TrainingLogRepository
type mongoTrainingLogRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingLogRepository creates a new session log repository.
func NewMongoTrainingLogRepository(db *mongo.Database) repository.TrainingLogRepository {
	return &mongoTrainingLogRepository{
		collection: db.Collection(trainingLogCollectionName),
	}
}

// Append inserts a log entry. The log has no update or delete path.
func (r *mongoTrainingLogRepository) Append(ctx context.Context, entry *domain.TrainingLogEntry) (primitive.ObjectID, error) {
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

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (r *mongoTrainingLogRepository) CountByRoutine(ctx context.Context, routineID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"routineId": routineID})
}

func (r *mongoTrainingLogRepository) CountSince(ctx context.Context, traineeID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"traineeId":   traineeID,
		"completedAt": bson.M{"$gte": since},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// ListByTrainee returns the trainee's log ordered by completion time.
func (r *mongoTrainingLogRepository) ListByTrainee(ctx context.Context, traineeID primitive.ObjectID, ascending bool, limit int64) ([]domain.TrainingLogEntry, error) {
	direction := -1
	if ascending {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: direction}, {Key: "_id", Value: direction}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"traineeId": traineeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.TrainingLogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureTrainingLogIndexes creates necessary indexes. Call during startup.
func EnsureTrainingLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "completedAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
