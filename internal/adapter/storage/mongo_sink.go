// internal/adapter/storage/mongo_sink.go

package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

const (
	postsCollection    = "posts"
	keywordsCollection = "keywords"
)

// MongoSink stores scored posts and discovered keywords in MongoDB.
// It implements listening.Sink.
type MongoSink struct {
	db *mongo.Database
}

// NewMongoSink creates a new sink on the given database.
func NewMongoSink(db *mongo.Database) *MongoSink {
	return &MongoSink{
		db: db,
	}
}

// WritePosts upserts scored posts keyed by platform and external ID, so
// re-scanning a window never duplicates documents.
func (s *MongoSink) WritePosts(ctx context.Context, posts []post.ScoredPost) error {
	if len(posts) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(posts))
	for _, p := range posts {
		filter := bson.M{
			"platform":    p.Platform,
			"external_id": p.ExternalID,
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter).
			SetReplacement(p).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.db.Collection(postsCollection).BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("error writing posts: %w", err)
	}

	return nil
}

// WriteKeywords stores one trending snapshot per scan.
func (s *MongoSink) WriteKeywords(ctx context.Context, platform string, set trending.Set) error {
	doc := bson.M{
		"platform":   platform,
		"scanned_at": time.Now().UTC(),
		"words":      set.Words,
		"phrases":    set.Phrases,
	}

	if _, err := s.db.Collection(keywordsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("error writing keywords: %w", err)
	}

	return nil
}
