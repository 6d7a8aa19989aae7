package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// DefaultBatchSize is the number of viewing session rows per INSERT.
const DefaultBatchSize = 1000

// Loader performs the full-replace load of a Dataset into the relational
// store. It owns no connection: the caller opens the handle, passes it in
// and closes it.
type Loader struct {
	db        *sql.DB
	dialect   database.Dialect
	users     *UserRepo
	content   *ContentRepo
	sessions  *SessionRepo
	batchSize int
	progress  ProgressFunc
	onTable   func(TableResult)
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithBatchSize sets the viewing_sessions batch size. Values below one
// fall back to DefaultBatchSize.
func WithBatchSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithProgress registers a callback fired after every inserted batch.
func WithProgress(fn ProgressFunc) LoaderOption {
	return func(l *Loader) { l.progress = fn }
}

// WithTableHook registers a callback fired once per table when its load
// finishes, successfully or not.
func WithTableHook(fn func(TableResult)) LoaderOption {
	return func(l *Loader) { l.onTable = fn }
}

// NewLoader wires the three table repos onto one handle.
func NewLoader(db *sql.DB, d database.Dialect, opts ...LoaderOption) *Loader {
	l := &Loader{
		db:        db,
		dialect:   d,
		users:     NewUserRepo(db, d),
		content:   NewContentRepo(db, d),
		sessions:  NewSessionRepo(db, d),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadResult collects the per-table outcomes of one Load.
type LoadResult struct {
	Tables []TableResult
}

// Rows returns the committed row count of table.
func (r LoadResult) Rows(table string) int {
	for _, t := range r.Tables {
		if t.Table == table {
			return t.Rows
		}
	}
	return 0
}

// Err joins every table error, nil when all tables committed.
func (r LoadResult) Err() error {
	var errs []error
	for _, t := range r.Tables {
		if t.Err != nil {
			errs = append(errs, t.Err)
		}
	}
	return errors.Join(errs...)
}

// Load ensures the schema, then replaces users, content and sessions in
// that order (sessions reference both). A failed table is rolled back on
// its own and the remaining tables still load. A schema failure aborts
// before any table is touched.
func (l *Loader) Load(ctx context.Context, ds model.Dataset) (LoadResult, error) {
	if err := database.EnsureSchema(ctx, l.db, l.dialect); err != nil {
		return LoadResult{}, fmt.Errorf("relational load: %w", err)
	}

	var res LoadResult
	record := func(t TableResult) {
		res.Tables = append(res.Tables, t)
		if l.onTable != nil {
			l.onTable(t)
		}
	}
	record(l.users.ReplaceAll(ctx, ds.Users, l.progress))
	record(l.content.ReplaceAll(ctx, ds.Content, l.progress))
	record(l.sessions.ReplaceAll(ctx, ds.Sessions, l.batchSize, l.progress))
	return res, res.Err()
}
