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

type mongoOrderStore struct {
	collection *mongo.Collection
}

// NewMongoOrderStore returns an OrderStore backed by the "orders" collection.
func NewMongoOrderStore(db *mongo.Database) OrderStore {
	return &mongoOrderStore{collection: db.Collection("orders")}
}

func (s *mongoOrderStore) Create(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1

	result, err := s.collection.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	order.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save replaces the whole document, conditional on the version that was
// read. A concurrent writer bumps the version first and this save reports
// ErrConflict instead of clobbering it.
func (s *mongoOrderStore) Save(ctx context.Context, order *models.Order) error {
	previous := order.Version
	order.Version = previous + 1
	order.UpdatedAt = time.Now()

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": order.ID, "version": previous}, order)
	if err != nil {
		order.Version = previous
		return err
	}
	if result.MatchedCount == 0 {
		order.Version = previous
		return ErrConflict
	}
	return nil
}

func (s *mongoOrderStore) Find(ctx context.Context, filter OrderFilter, sort Sort, page Page) ([]models.Order, error) {
	cursor, err := s.collection.Find(ctx, orderFilterDoc(filter), findOptions(sort, page))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Order](ctx, cursor)
}

func (s *mongoOrderStore) Count(ctx context.Context, filter OrderFilter) (int64, error) {
	return s.collection.CountDocuments(ctx, orderFilterDoc(filter))
}

func orderFilterDoc(f OrderFilter) bson.M {
	filter := bson.M{}
	if f.User != nil {
		filter["user"] = *f.User
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.City != "" {
		filter["shippingAddress.city"] = caseInsensitive(f.City)
	}
	rangeFilter(filter, "totalPrice", f.MinPrice, f.MaxPrice)
	dateRangeFilter(filter, "createdAt", f.CreatedAfter, f.CreatedBefore)
	return filter
}
