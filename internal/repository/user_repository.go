package repository

import (
	"context"
	"database/sql"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

var userColumns = []string{
	"user_id", "age", "country", "subscription_type", "registration_date", "total_watch_time_hours",
}

// UserRepo manages persistence for users.
type UserRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB, d database.Dialect) *UserRepo {
	return &UserRepo{db: db, dialect: d}
}

// ReplaceAll truncates users (cascading to their sessions) and inserts the
// given set in as few statements as the dialect allows.
func (r *UserRepo) ReplaceAll(ctx context.Context, users []model.User, progress ProgressFunc) TableResult {
	rows := make([][]any, len(users))
	for i, u := range users {
		rows[i] = []any{u.ID, u.Age, u.Country, u.SubscriptionType, u.RegistrationDate, u.TotalWatchTimeHours}
	}
	return replaceTable(ctx, r.db, r.dialect, TableUsers, userColumns, rows, 0, progress)
}

// List returns every user ordered by user_id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT user_id, age, country, subscription_type, registration_date, total_watch_time_hours
               FROM users ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.User
	for rows.Next() {
		var (
			u       model.User
			country sql.NullString
			sub     sql.NullString
			reg     sql.NullTime
			hours   sql.NullFloat64
		)
		if err := rows.Scan(&u.ID, &u.Age, &country, &sub, &reg, &hours); err != nil {
			return nil, err
		}
		u.Country, u.SubscriptionType = country.String, sub.String
		u.RegistrationDate = reg.Time.UTC()
		u.TotalWatchTimeHours = hours.Float64
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
