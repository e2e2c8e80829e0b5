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

type mongoPriceStore struct {
	collection *mongo.Collection
}

// NewMongoPriceStore returns a PriceStore backed by the "prices" collection.
func NewMongoPriceStore(db *mongo.Database) PriceStore {
	return &mongoPriceStore{collection: db.Collection("prices")}
}

func (s *mongoPriceStore) Create(ctx context.Context, price *models.Price) error {
	now := time.Now()
	price.CreatedAt = now
	price.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, price)
	if err != nil {
		return err
	}
	price.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoPriceStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Price, error) {
	var price models.Price
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&price)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (s *mongoPriceStore) FindActive(ctx context.Context) (*models.Price, error) {
	var price models.Price
	err := s.collection.FindOne(ctx, bson.M{"isActive": true}).Decode(&price)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (s *mongoPriceStore) Save(ctx context.Context, price *models.Price) error {
	price.UpdatedAt = time.Now()
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": price.ID}, price)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoPriceStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoPriceStore) Find(ctx context.Context, sort Sort, page Page) ([]models.Price, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, findOptions(sort, page))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Price](ctx, cursor)
}

func (s *mongoPriceStore) Count(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{})
}
