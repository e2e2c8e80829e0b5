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

type mongoQueryStore struct {
	collection *mongo.Collection
}

// NewMongoQueryStore returns a QueryStore backed by the "queries" collection.
func NewMongoQueryStore(db *mongo.Database) QueryStore {
	return &mongoQueryStore{collection: db.Collection("queries")}
}

func (s *mongoQueryStore) Create(ctx context.Context, query *models.Query) error {
	now := time.Now()
	query.CreatedAt = now
	query.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, query)
	if err != nil {
		return err
	}
	query.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoQueryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Query, error) {
	var query models.Query
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&query)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &query, nil
}

func (s *mongoQueryStore) Save(ctx context.Context, query *models.Query) error {
	query.UpdatedAt = time.Now()
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": query.ID}, query)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoQueryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoQueryStore) Find(ctx context.Context, filter QueryFilter, sort Sort, page Page) ([]models.Query, error) {
	cursor, err := s.collection.Find(ctx, queryFilterDoc(filter), findOptions(sort, page))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Query](ctx, cursor)
}

func (s *mongoQueryStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.collection.CountDocuments(ctx, queryFilterDoc(filter))
}

func (s *mongoQueryStore) UpdateMany(ctx context.Context, ids []primitive.ObjectID, update QueryBulkUpdate) (int64, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Response != nil {
		set["adminResponse"] = *update.Response
	}
	result, err := s.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func queryFilterDoc(f QueryFilter) bson.M {
	filter := bson.M{}
	if f.User != nil {
		filter["user"] = *f.User
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Search != "" {
		regex := caseInsensitive(f.Search)
		filter["$or"] = bson.A{
			bson.M{"subject": regex},
			bson.M{"message": regex},
		}
	}
	if f.Responded != nil {
		filter["adminResponse"] = bson.M{"$exists": *f.Responded}
	}
	if f.CreatedAfter != nil {
		filter["createdAt"] = bson.M{"$gte": *f.CreatedAfter}
	}
	return filter
}
