package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a MongoDB client and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// caseInsensitive builds a substring regex filter, escaping the input so
// user-supplied search terms are matched literally.
func caseInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// findOptions translates a Sort and Page into mongo options.
func findOptions(sort Sort, page Page) *options.FindOptions {
	opts := options.Find()
	if sort.Field != "" {
		dir := 1
		if sort.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sort.Field, Value: dir}})
	}
	if page.Size > 0 {
		opts.SetLimit(int64(page.Size))
		opts.SetSkip(int64(page.Skip()))
	}
	return opts
}

// rangeFilter adds $gte/$lte bounds for a numeric field when set.
func rangeFilter(filter bson.M, field string, min, max *float64) {
	if min == nil && max == nil {
		return
	}
	bounds := bson.M{}
	if min != nil {
		bounds["$gte"] = *min
	}
	if max != nil {
		bounds["$lte"] = *max
	}
	filter[field] = bounds
}

// dateRangeFilter adds $gte/$lte bounds for a date field when set.
func dateRangeFilter(filter bson.M, field string, after, before *time.Time) {
	if after == nil && before == nil {
		return
	}
	bounds := bson.M{}
	if after != nil {
		bounds["$gte"] = *after
	}
	if before != nil {
		bounds["$lte"] = *before
	}
	filter[field] = bounds
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)
	var out []T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
