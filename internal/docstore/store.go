// Package docstore loads the same batch into MongoDB, one collection per
// entity, with every document keyed by its domain identifier so a reload
// replaces instead of accumulating.
package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
)

// Collection names.
const (
	CollUsers    = "users"
	CollContent  = "content"
	CollSessions = "viewing_sessions"
)

// Collection is the subset of a document collection the loader needs.
type Collection interface {
	DeleteAll(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, docs []any) (int, error)
	Count(ctx context.Context) (int64, error)
}

// Database hands out collections by name.
type Database interface {
	Collection(name string) Collection
}

// Store is a MongoDB-backed Database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to cfg.URI and pings the primary. The caller must Close
// the store.
func Open(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, &database.ConnectionError{Store: "mongodb", Target: database.SanitizeDSN(cfg.URI), Err: err}
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &database.ConnectionError{Store: "mongodb", Target: database.SanitizeDSN(cfg.URI), Err: err}
	}
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Collection implements Database.
func (s *Store) Collection(name string) Collection {
	return mongoCollection{c: s.db.Collection(name)}
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	c *mongo.Collection
}

func (m mongoCollection) DeleteAll(ctx context.Context) (int64, error) {
	res, err := m.c.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m mongoCollection) InsertMany(ctx context.Context, docs []any) (int, error) {
	res, err := m.c.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (m mongoCollection) Count(ctx context.Context) (int64, error) {
	return m.c.CountDocuments(ctx, bson.D{})
}
