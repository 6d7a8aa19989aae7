package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// CollectionResult describes one collection replace.
type CollectionResult struct {
	Collection string
	Deleted    int64
	Docs       int
	Duration   time.Duration
	Err        error
}

// LoadResult collects the per-collection outcomes of one Load.
type LoadResult struct {
	Collections []CollectionResult
}

// Err joins every collection error.
func (r LoadResult) Err() error {
	var errs []error
	for _, c := range r.Collections {
		if c.Err != nil {
			errs = append(errs, c.Err)
		}
	}
	return errors.Join(errs...)
}

// Loader replaces the users, content and viewing_sessions collections.
type Loader struct {
	db     Database
	onColl func(CollectionResult)
}

// NewLoader returns a Loader writing to db. onColl, when non-nil, is
// called after each collection.
func NewLoader(db Database, onColl func(CollectionResult)) *Loader {
	return &Loader{db: db, onColl: onColl}
}

// Load deletes every document of each collection and inserts the new set.
// Collections are independent: a failure in one does not stop the others.
func (l *Loader) Load(ctx context.Context, ds model.Dataset) (LoadResult, error) {
	var res LoadResult
	for _, step := range []struct {
		name string
		docs []any
	}{
		{CollUsers, userDocs(ds.Users)},
		{CollContent, contentDocs(ds.Content)},
		{CollSessions, sessionDocs(ds.Sessions)},
	} {
		r := replace(ctx, l.db.Collection(step.name), step.name, step.docs)
		res.Collections = append(res.Collections, r)
		if l.onColl != nil {
			l.onColl(r)
		}
	}
	return res, res.Err()
}

func replace(ctx context.Context, c Collection, name string, docs []any) CollectionResult {
	start := time.Now()
	res := CollectionResult{Collection: name}
	deleted, err := c.DeleteAll(ctx)
	if err != nil {
		res.Err = fmt.Errorf("replace %s: delete: %w", name, err)
		res.Duration = time.Since(start)
		return res
	}
	res.Deleted = deleted
	// the driver rejects an empty InsertMany
	if len(docs) > 0 {
		n, err := c.InsertMany(ctx, docs)
		if err != nil {
			res.Err = fmt.Errorf("replace %s: insert: %w", name, err)
			res.Duration = time.Since(start)
			return res
		}
		res.Docs = n
	}
	res.Duration = time.Since(start)
	return res
}

// Counts returns the document count of every collection.
func Counts(ctx context.Context, db Database) (map[string]int64, error) {
	out := make(map[string]int64, 3)
	for _, name := range []string{CollUsers, CollContent, CollSessions} {
		n, err := db.Collection(name).Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}
