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

type mongoItemStore struct {
	collection *mongo.Collection
}

// NewMongoItemStore returns an ItemStore backed by the "items" collection.
func NewMongoItemStore(db *mongo.Database) ItemStore {
	return &mongoItemStore{collection: db.Collection("items")}
}

func (s *mongoItemStore) Create(ctx context.Context, item *models.Item) error {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, item)
	if err != nil {
		return err
	}
	item.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoItemStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	var item models.Item
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *mongoItemStore) Save(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now()
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoItemStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoItemStore) Find(ctx context.Context, filter ItemFilter, sort Sort, page Page) ([]models.Item, error) {
	cursor, err := s.collection.Find(ctx, itemFilterDoc(filter), findOptions(sort, page))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Item](ctx, cursor)
}

func (s *mongoItemStore) Count(ctx context.Context, filter ItemFilter) (int64, error) {
	return s.collection.CountDocuments(ctx, itemFilterDoc(filter))
}

func itemFilterDoc(f ItemFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Availability != "" {
		filter["availability"] = f.Availability
	}
	rangeFilter(filter, "price", f.MinPrice, f.MaxPrice)
	if f.Search != "" {
		regex := caseInsensitive(f.Search)
		filter["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"description": regex},
			bson.M{"category": regex},
		}
	}
	return filter
}
