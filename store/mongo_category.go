package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"jewellery-backend/models"
)

type mongoCategoryStore struct {
	collection *mongo.Collection
}

// NewMongoCategoryStore returns a CategoryStore backed by the "categories"
// collection.
func NewMongoCategoryStore(db *mongo.Database) CategoryStore {
	return &mongoCategoryStore{collection: db.Collection("categories")}
}

func (s *mongoCategoryStore) Create(ctx context.Context, category *models.Category) error {
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	category.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoCategoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *mongoCategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := s.collection.FindOne(ctx, bson.M{"name": name}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *mongoCategoryStore) Save(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now()
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCategoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCategoryStore) Find(ctx context.Context, search string, sort Sort, page Page) ([]models.Category, error) {
	cursor, err := s.collection.Find(ctx, categoryFilterDoc(search), findOptions(sort, page))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Category](ctx, cursor)
}

func (s *mongoCategoryStore) Count(ctx context.Context, search string) (int64, error) {
	return s.collection.CountDocuments(ctx, categoryFilterDoc(search))
}

func categoryFilterDoc(search string) bson.M {
	filter := bson.M{}
	if search != "" {
		filter["name"] = caseInsensitive(search)
	}
	return filter
}
