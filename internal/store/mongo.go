package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jsonblob/internal/blobid"
	"jsonblob/internal/models"
)

const (
	mongoConnectTimeout    = 10 * time.Second
	mongoDisconnectTimeout = 5 * time.Second
)

// MongoStore is the MongoDB blob storage engine used by hosted deployments.
type MongoStore struct {
	client *mongo.Client
	blobs  *mongo.Collection
}

// mongoBlobItem is the persisted document shape. BSON datetimes carry
// millisecond precision, which is enough for access bookkeeping.
type mongoBlobItem struct {
	ID         primitive.ObjectID `bson:"_id"`
	Body       string             `bson:"blob"`
	CreatedAt  time.Time          `bson:"created"`
	UpdatedAt  time.Time          `bson:"updated"`
	AccessedAt time.Time          `bson:"accessed"`
}

// OpenMongo connects to MongoDB and returns a blob store backed by the
// given database and collection.
func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		blobs:  client.Database(database).Collection(collection),
	}, nil
}

// Insert stores a new blob document.
func (s *MongoStore) Insert(ctx context.Context, rec *models.BlobRecord) error {
	if rec == nil {
		return fmt.Errorf("record is required")
	}

	_, err := s.blobs.InsertOne(ctx, mongoBlobItem{
		ID:         rec.ID,
		Body:       rec.Body,
		CreatedAt:  rec.CreatedAt.UTC(),
		UpdatedAt:  rec.UpdatedAt.UTC(),
		AccessedAt: rec.AccessedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert blob: %w", err)
	}
	return nil
}

// FindByID returns a blob document by id, or (nil, nil) when absent.
func (s *MongoStore) FindByID(ctx context.Context, id blobid.ID) (*models.BlobRecord, error) {
	var item mongoBlobItem
	err := s.blobs.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find blob: %w", err)
	}
	return item.record(), nil
}

// Replace swaps the body and write timestamps at the document's id and
// returns the number of matched documents.
func (s *MongoStore) Replace(ctx context.Context, rec *models.BlobRecord) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("record is required")
	}

	result, err := s.blobs.UpdateOne(ctx, bson.M{"_id": rec.ID}, bson.M{
		"$set": bson.M{
			"blob":     rec.Body,
			"updated":  rec.UpdatedAt.UTC(),
			"accessed": rec.AccessedAt.UTC(),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("replace blob: %w", err)
	}
	return result.MatchedCount, nil
}

// Remove deletes a blob document and returns the number of removed documents.
func (s *MongoStore) Remove(ctx context.Context, id blobid.ID) (int64, error) {
	result, err := s.blobs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("remove blob: %w", err)
	}
	return result.DeletedCount, nil
}

// SetAccessed updates only the accessed timestamp. A missing id matches
// nothing and is a no-op.
func (s *MongoStore) SetAccessed(ctx context.Context, id blobid.ID, accessed time.Time) error {
	_, err := s.blobs.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"accessed": accessed.UTC()},
	})
	if err != nil {
		return fmt.Errorf("set accessed: %w", err)
	}
	return nil
}

// ListAccessedBefore returns up to limit documents last accessed strictly
// before cutoff, oldest first.
func (s *MongoStore) ListAccessedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.BlobRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	opts := options.Find().
		SetSort(bson.M{"accessed": 1}).
		SetLimit(int64(limit))

	cursor, err := s.blobs.Find(ctx, bson.M{"accessed": bson.M{"$lt": cutoff.UTC()}}, opts)
	if err != nil {
		return nil, fmt.Errorf("scan blobs: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.BlobRecord
	for cursor.Next(ctx) {
		var item mongoBlobItem
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode blob: %w", err)
		}
		records = append(records, *item.record())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return records, nil
}

// Count returns the number of stored blobs.
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	count, err := s.blobs.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count blobs: %w", err)
	}
	return count, nil
}

// Ping verifies the MongoDB connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (i mongoBlobItem) record() *models.BlobRecord {
	return &models.BlobRecord{
		ID:         i.ID,
		Body:       i.Body,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
		AccessedAt: i.AccessedAt,
	}
}
