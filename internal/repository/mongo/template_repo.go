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
	templateCollectionName     = "routine_templates"
	templateItemCollectionName = "routine_template_items"
)

// mongoTemplateRepository implements repository.TemplateRepository
type mongoTemplateRepository struct {
	collection     *mongo.Collection
	itemCollection *mongo.Collection
}

// NewMongoTemplateRepository creates a new routine catalog repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection:     db.Collection(templateCollectionName),
		itemCollection: db.Collection(templateItemCollectionName),
	}
}

// Create inserts a template and its items. Call inside a transaction so a
// failed item insert does not leave an empty template behind.
func (r *mongoTemplateRepository) Create(ctx context.Context, tpl *domain.RoutineTemplate, items []domain.TemplateItem) (primitive.ObjectID, error) {
	if tpl.ExternalKey == "" || tpl.Name == "" {
		return primitive.NilObjectID, errors.New("template requires externalKey and name")
	}
	tpl.ID = primitive.NewObjectID()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, tpl); err != nil {
		return primitive.NilObjectID, err
	}
	if len(items) == 0 {
		return tpl.ID, nil
	}

	docs := make([]interface{}, 0, len(items))
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		items[i].TemplateID = tpl.ID
		docs = append(docs, items[i])
	}
	if _, err := r.itemCollection.InsertMany(ctx, docs); err != nil {
		return primitive.NilObjectID, err
	}
	return tpl.ID, nil
}

func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineTemplate, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

// GetActiveByKey returns the active template for a normalized external key.
func (r *mongoTemplateRepository) GetActiveByKey(ctx context.Context, externalKey string) (*domain.RoutineTemplate, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	return r.findOne(ctx, bson.M{"externalKey": externalKey, "active": true}, opts)
}

func (r *mongoTemplateRepository) LatestVersion(ctx context.Context, externalKey string) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	tpl, err := r.findOne(ctx, bson.M{"externalKey": externalKey}, opts)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return tpl.Version, nil
}

func (r *mongoTemplateRepository) DeactivateByKey(ctx context.Context, externalKey string) error {
	filter := bson.M{"externalKey": externalKey, "active": true}
	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"active": false}})
	return err
}

// List returns templates sorted by key, newest version first.
func (r *mongoTemplateRepository) List(ctx context.Context, activeOnly bool) ([]domain.RoutineTemplate, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "externalKey", Value: 1}, {Key: "version", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.RoutineTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// ListItems returns a template's items ordered by (dayIndex, orderIndex).
func (r *mongoTemplateRepository) ListItems(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dayIndex", Value: 1}, {Key: "orderIndex", Value: 1}})
	cursor, err := r.itemCollection.Find(ctx, bson.M{"templateId": templateID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.TemplateItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoTemplateRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.RoutineTemplate, error) {
	var tpl domain.RoutineTemplate
	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&tpl)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&tpl)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// EnsureTemplateIndexes creates necessary indexes on both catalog collections.
func EnsureTemplateIndexes(ctx context.Context, db *mongo.Database) error {
	templateIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "externalKey", Value: 1}, {Key: "version", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// At most one active template per key.
			Keys:    bson.D{{Key: "externalKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"active": true}).SetName("one_active_per_key"),
		},
	}
	if _, err := db.Collection(templateCollectionName).Indexes().CreateMany(ctx, templateIndexes); err != nil {
		return err
	}

	itemIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "dayIndex", Value: 1}, {Key: "orderIndex", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(templateItemCollectionName).Indexes().CreateMany(ctx, itemIndexes)
	return err
}
