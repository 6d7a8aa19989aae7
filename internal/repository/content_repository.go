package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

var contentColumns = []string{
	"content_id", "title", "genre", "content_type", "duration_minutes", "release_year", "rating",
	"views_count", "production_budget", "seasons", "episodes_per_season", "avg_episode_duration",
}

// ContentRepo manages persistence for the content catalog. List-valued
// attributes are stored as JSON text; the JSON encoding happens here and
// nowhere else.
type ContentRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewContentRepo constructs a ContentRepo with the given DB handle.
func NewContentRepo(db *sql.DB, d database.Dialect) *ContentRepo {
	return &ContentRepo{db: db, dialect: d}
}

// ReplaceAll truncates content (cascading to sessions) and inserts the
// reconciled catalog. Attributes that do not apply to a record's kind are
// written as NULL.
func (r *ContentRepo) ReplaceAll(ctx context.Context, items []model.Content, progress ProgressFunc) TableResult {
	rows := make([][]any, len(items))
	for i, c := range items {
		row, err := contentRow(c)
		if err != nil {
			return TableResult{Table: TableContent, Err: &PartialLoadError{Table: TableContent, Err: err}}
		}
		rows[i] = row
	}
	return replaceTable(ctx, r.db, r.dialect, TableContent, contentColumns, rows, 0, progress)
}

func contentRow(c model.Content) ([]any, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	genre, err := json.Marshal(c.Genre)
	if err != nil {
		return nil, fmt.Errorf("content %s: encode genre: %w", c.ID, err)
	}
	var episodes any
	if eps := c.EpisodesPerSeason(); eps != nil {
		b, err := json.Marshal(eps)
		if err != nil {
			return nil, fmt.Errorf("content %s: encode episodes_per_season: %w", c.ID, err)
		}
		episodes = string(b)
	}
	return []any{
		c.ID,
		c.Title,
		string(genre),
		string(c.Kind),
		int64(c.DurationMinutes()),
		nullInt(c.ReleaseYear()),
		c.Rating,
		c.Views,
		c.ProductionBudget,
		nullInt(c.Seasons()),
		episodes,
		nullInt(c.AvgEpisodeDuration()),
	}, nil
}

// jsonText selects a JSON column as plain text on every dialect.
func (r *ContentRepo) jsonText(col string) string {
	switch r.dialect {
	case database.Postgres:
		return col + "::text"
	case database.MySQL:
		return "CAST(" + col + " AS CHAR)"
	default:
		return col
	}
}

// List reads the catalog back into the tagged variant, ordered by
// content_id.
func (r *ContentRepo) List(ctx context.Context) ([]model.Content, error) {
	q := fmt.Sprintf(`SELECT content_id, title, %s, content_type, duration_minutes, release_year, rating,
               views_count, production_budget, seasons, %s, avg_episode_duration
               FROM content ORDER BY content_id`, r.jsonText("genre"), r.jsonText("episodes_per_season"))
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Content
	for rows.Next() {
		var (
			c                                   model.Content
			kind                                string
			genre, episodes                     sql.NullString
			duration, year, seasons, avgEpisode sql.NullInt64
			rating                              sql.NullFloat64
			views, budget                       sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Title, &genre, &kind, &duration, &year, &rating,
			&views, &budget, &seasons, &episodes, &avgEpisode); err != nil {
			return nil, err
		}
		c.Kind = model.ContentKind(kind)
		c.Rating, c.Views, c.ProductionBudget = rating.Float64, views.Int64, budget.Int64
		if genre.Valid {
			if err := json.Unmarshal([]byte(genre.String), &c.Genre); err != nil {
				return nil, fmt.Errorf("content %s: decode genre: %w", c.ID, err)
			}
		}
		switch c.Kind {
		case model.KindMovie:
			c.Movie = &model.MovieAttrs{DurationMinutes: int(duration.Int64), ReleaseYear: int(year.Int64)}
		case model.KindSeries:
			s := &model.SeriesAttrs{Seasons: int(seasons.Int64), AvgEpisodeDuration: int(avgEpisode.Int64)}
			if episodes.Valid {
				if err := json.Unmarshal([]byte(episodes.String), &s.EpisodesPerSeason); err != nil {
					return nil, fmt.Errorf("content %s: decode episodes_per_season: %w", c.ID, err)
				}
			}
			c.Series = s
		default:
			return nil, fmt.Errorf("content %s: unknown content_type %q", c.ID, kind)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
