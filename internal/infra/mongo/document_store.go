package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri not configured")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(timeout).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// DocumentStore maps each collection onto a MongoDB collection of the same
// name. Entities carry bson tags matching their json names, with id as _id.
type DocumentStore struct {
	db *mongo.Database
}

func NewDocumentStore(db *mongo.Database) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Find(ctx context.Context, collection string, q app.Query, out any) error {
	cur, err := s.db.Collection(collection).Find(ctx, filterDoc(q.Filters), findOptions(q))
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (s *DocumentStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrValidation)
	}
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: id}}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Increment(ctx context.Context, collection, id string, inc map[string]int, set map[string]any) error {
	coll := s.db.Collection(collection)
	filter := bson.D{{Key: "_id", Value: id}}
	update := updateDoc(inc, set)
	if len(update) == 0 {
		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("increment %s/%s: %w", collection, id, err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	}
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("increment %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func filterDoc(filters []app.Filter) bson.D {
	doc := bson.D{}
	for _, f := range filters {
		doc = append(doc, bson.E{Key: fieldKey(f.Field), Value: f.Value})
	}
	return doc
}

func findOptions(q app.Query) *options.FindOptionsBuilder {
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: fieldKey(q.OrderBy), Value: dir}, {Key: "_id", Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}

func updateDoc(inc map[string]int, set map[string]any) bson.D {
	update := bson.D{}
	if len(inc) > 0 {
		fields := bson.M{}
		for k, v := range inc {
			fields[k] = v
		}
		update = append(update, bson.E{Key: "$inc", Value: fields})
	}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: bson.M(set)})
	}
	return update
}

func fieldKey(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}
