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

const exportCollectionName = "history_exports"

// mongoExportRepository implements repository.ExportRepository
type mongoExportRepository struct {
	collection *mongo.Collection
}

func NewMongoExportRepository(db *mongo.Database) repository.ExportRepository {
	return &mongoExportRepository{
		collection: db.Collection(exportCollectionName),
	}
}

// Create stores export metadata. The object itself is already in storage.
func (r *mongoExportRepository) Create(ctx context.Context, export *domain.HistoryExport) (primitive.ObjectID, error) {
	if export.TraineeID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("export requires traineeId and objectKey")
	}
	export.ID = primitive.NewObjectID()
	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, export); err != nil {
		return primitive.NilObjectID, err
	}
	return export.ID, nil
}

func (r *mongoExportRepository) ListByTrainee(ctx context.Context, traineeID primitive.ObjectID) ([]domain.HistoryExport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"traineeId": traineeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exports []domain.HistoryExport
	if err = cursor.All(ctx, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}

// EnsureExportIndexes creates necessary indexes. Call during startup.
func EnsureExportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
