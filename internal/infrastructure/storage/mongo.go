package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// MongoStore upserts items into a collection keyed by identity_key and
// appends run summaries to a sibling reports collection.
type MongoStore struct {
	client  *mongo.Client
	items   *mongo.Collection
	reports *mongo.Collection
}

var _ ports.ItemStore = (*MongoStore)(nil)

// NewMongoStore connects, pings and ensures the identity_key unique index.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	items := db.Collection(collection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "identity_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := items.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	return &MongoStore{
		client:  client,
		items:   items,
		reports: db.Collection(collection + "_reports"),
	}, nil
}

// Save upserts each item by identity key and inserts the run summary.
// Upsert keeps a replayed batch idempotent without failing the run.
func (s *MongoStore) Save(ctx context.Context, items []domain.ClassifiedItem, report domain.RunReport) error {
	for _, item := range items {
		filter := bson.M{"identity_key": item.IdentityKey}
		doc := bson.M{
			"identity_key": item.IdentityKey,
			"title":        item.Title,
			"url":          item.URL,
			"source_id":    item.SourceID,
			"source_name":  item.SourceName,
			"source_type":  string(item.SourceType),
			"language":     string(item.Language),
			"summary":      item.Summary,
			"category":     string(item.Category),
			"tags":         item.Tags,
			"companies":    item.Companies,
			"importance":   item.Importance,
			"published_at": item.PublishedAt,
			"fetch_time":   item.FetchTime,
		}
		opts := options.Replace().SetUpsert(true)
		if _, err := s.items.ReplaceOne(ctx, filter, doc, opts); err != nil {
			return fmt.Errorf("upsert item %s: %w", item.IdentityKey, err)
		}
	}

	summary := bson.M{
		"run_id":          report.RunID,
		"started_at":      report.StartedAt,
		"duration_ms":     report.Duration.Milliseconds(),
		"total_fetched":   report.TotalFetched,
		"accepted":        report.Accepted,
		"hard_duplicates": report.HardDuplicates,
		"soft_duplicates": report.SoftDuplicates,
		"rejected":        report.Rejected,
		"filtered_out":    report.FilteredOut,
		"source_errors":   len(report.SourceErrors),
	}
	if _, err := s.reports.InsertOne(ctx, summary); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
