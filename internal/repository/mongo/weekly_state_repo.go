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

const weeklyStateCollectionName = "weekly_states"

// mongoWeeklyStateRepository implements repository.WeeklyStateRepository.
// Documents are keyed by trainee ID, which makes "one state per trainee" structural.
type mongoWeeklyStateRepository struct {
	collection *mongo.Collection
}

func NewMongoWeeklyStateRepository(db *mongo.Database) repository.WeeklyStateRepository {
	return &mongoWeeklyStateRepository{
		collection: db.Collection(weeklyStateCollectionName),
	}
}

func (r *mongoWeeklyStateRepository) Get(ctx context.Context, traineeID primitive.ObjectID) (*domain.WeeklyState, error) {
	var state domain.WeeklyState
	err := r.collection.FindOne(ctx, bson.M{"_id": traineeID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &state, nil
}

func (r *mongoWeeklyStateRepository) Save(ctx context.Context, state *domain.WeeklyState) error {
	if state.TraineeID == primitive.NilObjectID {
		return errors.New("weekly state requires traineeId")
	}
	state.UpdatedAt = time.Now().UTC()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": state.TraineeID}, state, options.Replace().SetUpsert(true))
	return err
}
