package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// Default database and collection names for MongoStore.
const (
	DefaultMongoDatabase   = "semtk"
	DefaultMongoCollection = "nodegroups"
)

// MongoStore keeps records in one collection, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// DialMongo connects to the deployment at uri. Empty database or
// collection names use the defaults.
func DialMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *MongoStore) Put(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store record %s: %w", r.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	var r Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRecordID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"data": 0})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	recs := []Record{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for i := range recs {
		recs[i].CreatedAt = recs[i].CreatedAt.UTC()
	}
	return recs, nil
}

// Close disconnects the client, waiting at most five seconds.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
