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

const (
	traineeRoutineCollectionName     = "trainee_routines"
	traineeRoutineItemCollectionName = "trainee_routine_items"
)

// mongoTraineeRoutineRepository implements repository.TraineeRoutineRepository
type mongoTraineeRoutineRepository struct {
	collection     *mongo.Collection
	itemCollection *mongo.Collection
}

// NewMongoTraineeRoutineRepository creates a new snapshot repository.
func NewMongoTraineeRoutineRepository(db *mongo.Database) repository.TraineeRoutineRepository {
	return &mongoTraineeRoutineRepository{
		collection:     db.Collection(traineeRoutineCollectionName),
		itemCollection: db.Collection(traineeRoutineItemCollectionName),
	}
}

// Create inserts a snapshot header.
func (r *mongoTraineeRoutineRepository) Create(ctx context.Context, routine *domain.TraineeRoutine) (primitive.ObjectID, error) {
	if routine.TraineeID == primitive.NilObjectID || routine.TemplateID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine requires traineeId and templateId")
	}
	routine.ID = primitive.NewObjectID()
	if routine.AssignedAt.IsZero() {
		routine.AssignedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted routine ID")
	}
	return insertedID, nil
}

// InsertItems copies snapshot items in one round trip, preserving order.
func (r *mongoTraineeRoutineRepository) InsertItems(ctx context.Context, items []domain.TraineeRoutineItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(items))
	for i := range items {
		if items[i].RoutineID == primitive.NilObjectID {
			return errors.New("routine item requires routineId")
		}
		items[i].ID = primitive.NewObjectID()
		docs = append(docs, items[i])
	}
	_, err := r.itemCollection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (r *mongoTraineeRoutineRepository) DeactivateActive(ctx context.Context, traineeID primitive.ObjectID) (int64, error) {
	filter := bson.M{"traineeId": traineeID, "active": true}
	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// GetActive returns the trainee's active snapshot, newest assignment first.
func (r *mongoTraineeRoutineRepository) GetActive(ctx context.Context, traineeID primitive.ObjectID) (*domain.TraineeRoutine, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "assignedAt", Value: -1}})
	return r.findOne(ctx, bson.M{"traineeId": traineeID, "active": true}, opts)
}

func (r *mongoTraineeRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TraineeRoutine, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne())
}

func (r *mongoTraineeRoutineRepository) ListItems(ctx context.Context, routineID primitive.ObjectID) ([]domain.TraineeRoutineItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dayIndex", Value: 1}, {Key: "orderIndex", Value: 1}})
	cursor, err := r.itemCollection.Find(ctx, bson.M{"routineId": routineID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.TraineeRoutineItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoTraineeRoutineRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.TraineeRoutine, error) {
	var routine domain.TraineeRoutine
	err := r.collection.FindOne(ctx, filter, opts).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// EnsureTraineeRoutineIndexes creates necessary indexes. Call during startup.
func EnsureTraineeRoutineIndexes(ctx context.Context, db *mongo.Database) error {
	routineIndexes := []mongo.IndexModel{
		{
			// At most one active snapshot per trainee.
			Keys:    bson.D{{Key: "traineeId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"active": true}).SetName("one_active_per_trainee"),
		},
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "assignedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := db.Collection(traineeRoutineCollectionName).Indexes().CreateMany(ctx, routineIndexes); err != nil {
		return err
	}

	itemIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "dayIndex", Value: 1}, {Key: "orderIndex", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(traineeRoutineItemCollectionName).Indexes().CreateMany(ctx, itemIndexes)
	return err
}
