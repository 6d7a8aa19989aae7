package repository

import (
	"context"
	"database/sql"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

var sessionColumns = []string{
	"session_id", "user_id", "content_id", "watch_date", "watch_duration_minutes",
	"completion_percentage", "device_type", "quality_level",
}

// SessionRepo manages persistence for viewing sessions, the largest table
// and the only one loaded in fixed-size batches.
type SessionRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB, d database.Dialect) *SessionRepo {
	return &SessionRepo{db: db, dialect: d}
}

// ReplaceAll truncates viewing_sessions and inserts the set batchSize rows
// per statement. The batches share one transaction, so the final table
// content does not depend on batchSize.
func (r *SessionRepo) ReplaceAll(ctx context.Context, sessions []model.ViewingSession, batchSize int, progress ProgressFunc) TableResult {
	rows := make([][]any, len(sessions))
	for i, s := range sessions {
		rows[i] = []any{
			s.ID, s.UserID, s.ContentID, s.WatchDate, s.WatchDurationMinutes,
			s.CompletionPercentage, s.DeviceType, s.QualityLevel,
		}
	}
	return replaceTable(ctx, r.db, r.dialect, TableSessions, sessionColumns, rows, batchSize, progress)
}

// List returns every session ordered by session_id.
func (r *SessionRepo) List(ctx context.Context) ([]model.ViewingSession, error) {
	const q = `SELECT session_id, user_id, content_id, watch_date, watch_duration_minutes,
               completion_percentage, device_type, quality_level
               FROM viewing_sessions ORDER BY session_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.ViewingSession
	for rows.Next() {
		var (
			s               model.ViewingSession
			watched         sql.NullTime
			duration        sql.NullInt64
			completion      sql.NullFloat64
			device, quality sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.ContentID, &watched, &duration,
			&completion, &device, &quality); err != nil {
			return nil, err
		}
		s.WatchDate = watched.Time.UTC()
		s.WatchDurationMinutes = int(duration.Int64)
		s.CompletionPercentage = completion.Float64
		s.DeviceType, s.QualityLevel = device.String, quality.String
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
