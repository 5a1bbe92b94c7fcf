package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the indexes of every collection the service uses.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{planConfigCollectionName, func() error { return EnsurePlanConfigIndexes(ctx, db.Collection(planConfigCollectionName)) }},
		{templateCollectionName, func() error { return EnsureTemplateIndexes(ctx, db) }},
		{traineeRoutineCollectionName, func() error { return EnsureTraineeRoutineIndexes(ctx, db) }},
		{trainingLogCollectionName, func() error { return EnsureTrainingLogIndexes(ctx, db.Collection(trainingLogCollectionName)) }},
		{exportCollectionName, func() error { return EnsureExportIndexes(ctx, db.Collection(exportCollectionName)) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", step.name, err)
		}
	}
	return nil
}
