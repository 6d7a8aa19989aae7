package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// IntegrityRepo runs the post-load consistency queries. It only reads.
type IntegrityRepo struct {
	db *sql.DB
}

// NewIntegrityRepo constructs an IntegrityRepo with the given DB handle.
func NewIntegrityRepo(db *sql.DB) *IntegrityRepo {
	return &IntegrityRepo{db: db}
}

const (
	orphanUsersQuery = `SELECT COUNT(*) FROM viewing_sessions vs
               LEFT JOIN users u ON vs.user_id = u.user_id
               WHERE u.user_id IS NULL`
	orphanContentQuery = `SELECT COUNT(*) FROM viewing_sessions vs
               LEFT JOIN content c ON vs.content_id = c.content_id
               WHERE c.content_id IS NULL`
)

// Report counts rows per table and per content kind, and the sessions whose
// user or content reference does not resolve. Orphans are reported, not
// treated as errors; an error means a query itself failed.
func (r *IntegrityRepo) Report(ctx context.Context) (model.IntegrityReport, error) {
	rep := model.IntegrityReport{ContentByKind: map[model.ContentKind]int64{}}

	if err := r.count(ctx, "SELECT COUNT(*) FROM users", &rep.Users); err != nil {
		return rep, err
	}

	if err := r.countByKind(ctx, &rep); err != nil {
		return rep, fmt.Errorf("count content by kind: %w", err)
	}
	if err := r.count(ctx, "SELECT COUNT(*) FROM viewing_sessions", &rep.Sessions); err != nil {
		return rep, err
	}
	if err := r.count(ctx, orphanUsersQuery, &rep.OrphanUserRefs); err != nil {
		return rep, err
	}
	if err := r.count(ctx, orphanContentQuery, &rep.OrphanContentRefs); err != nil {
		return rep, err
	}
	return rep, nil
}

// countByKind must release its rows before the next query: the loader's
// handle holds a single connection.
func (r *IntegrityRepo) countByKind(ctx context.Context, rep *model.IntegrityReport) error {
	rows, err := r.db.QueryContext(ctx, "SELECT content_type, COUNT(*) FROM content GROUP BY content_type")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			kind string
			n    int64
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return err
		}
		rep.ContentByKind[model.ContentKind(kind)] = n
		rep.ContentTotal += n
	}
	return rows.Err()
}

func (r *IntegrityRepo) count(ctx context.Context, q string, dst *int64) error {
	if err := r.db.QueryRowContext(ctx, q).Scan(dst); err != nil {
		return fmt.Errorf("integrity query %q: %w", q, err)
	}
	return nil
}
