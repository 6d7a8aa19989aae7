// Package reconcile turns the two differently shaped catalog records of
// content.json into the single tagged model.Content variant. It is the
// only place that looks at which keys a raw record carries; everything
// downstream switches on Content.Kind.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/source"
)

// RecordError points at the catalog entry that could not be reconciled.
// Index is the 0-based position inside its kind's array.
type RecordError struct {
	Kind  model.ContentKind
	Index int
	Key   string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("reconcile %s[%d]: %q: %v", e.Kind, e.Index, e.Key, e.Err)
	}
	return fmt.Sprintf("reconcile %s[%d]: %v", e.Kind, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

var errMissingKey = fmt.Errorf("%w: missing key", source.ErrMalformedRecord)

// Reconcile normalizes the raw catalog: movies first, then series, each in
// file order. Any invalid entry fails the whole catalog.
func Reconcile(raw source.RawCatalog) ([]model.Content, error) {
	out := make([]model.Content, 0, len(raw.Movies)+len(raw.Series))
	seen := make(map[string]model.ContentKind, cap(out))

	add := func(c model.Content, index int) error {
		if prev, dup := seen[c.ID]; dup {
			return &RecordError{Kind: c.Kind, Index: index, Key: "content_id",
				Err: fmt.Errorf("%w: duplicate content_id %q (already used by a %s)", source.ErrMalformedRecord, c.ID, prev)}
		}
		if err := c.Check(); err != nil {
			return &RecordError{Kind: c.Kind, Index: index, Err: fmt.Errorf("%w: %w", source.ErrMalformedRecord, err)}
		}
		if err := model.Validate(c); err != nil {
			return &RecordError{Kind: c.Kind, Index: index, Err: fmt.Errorf("%w: %w", source.ErrMalformedRecord, err)}
		}
		seen[c.ID] = c.Kind
		out = append(out, c)
		return nil
	}

	for i, m := range raw.Movies {
		c, err := Movie(m)
		if err != nil {
			return nil, withPosition(err, model.KindMovie, i)
		}
		if err := add(c, i); err != nil {
			return nil, err
		}
	}
	for i, s := range raw.Series {
		c, err := Series(s)
		if err != nil {
			return nil, withPosition(err, model.KindSeries, i)
		}
		if err := add(c, i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Movie maps one raw movie. Series-only attributes stay absent.
func Movie(m source.RawMovie) (model.Content, error) {
	switch {
	case m.ContentID == nil:
		return model.Content{}, missing("content_id")
	case m.Title == nil:
		return model.Content{}, missing("title")
	case m.Genre == nil:
		return model.Content{}, missing("genre")
	case m.DurationMinutes == nil:
		return model.Content{}, missing("duration_minutes")
	case m.ReleaseYear == nil:
		return model.Content{}, missing("release_year")
	case m.Rating == nil:
		return model.Content{}, missing("rating")
	case m.ViewsCount == nil:
		return model.Content{}, missing("views_count")
	case m.ProductionBudget == nil:
		return model.Content{}, missing("production_budget")
	}
	return model.Content{
		ID:               *m.ContentID,
		Title:            *m.Title,
		Genre:            cloneSlice(m.Genre),
		Kind:             model.KindMovie,
		Rating:           *m.Rating,
		Views:            *m.ViewsCount,
		ProductionBudget: *m.ProductionBudget,
		Movie: &model.MovieAttrs{
			DurationMinutes: *m.DurationMinutes,
			ReleaseYear:     *m.ReleaseYear,
		},
	}, nil
}

// Series maps one raw series. The average episode length doubles as the
// content duration; release year stays absent.
func Series(s source.RawSeries) (model.Content, error) {
	switch {
	case s.ContentID == nil:
		return model.Content{}, missing("content_id")
	case s.Title == nil:
		return model.Content{}, missing("title")
	case s.Genre == nil:
		return model.Content{}, missing("genre")
	case s.AvgEpisodeDuration == nil:
		return model.Content{}, missing("avg_episode_duration")
	case s.Rating == nil:
		return model.Content{}, missing("rating")
	case s.TotalViews == nil:
		return model.Content{}, missing("total_views")
	case s.ProductionBudget == nil:
		return model.Content{}, missing("production_budget")
	case s.Seasons == nil:
		return model.Content{}, missing("seasons")
	case s.EpisodesPerSeason == nil:
		return model.Content{}, missing("episodes_per_season")
	}
	return model.Content{
		ID:               *s.ContentID,
		Title:            *s.Title,
		Genre:            cloneSlice(s.Genre),
		Kind:             model.KindSeries,
		Rating:           *s.Rating,
		Views:            *s.TotalViews,
		ProductionBudget: *s.ProductionBudget,
		Series: &model.SeriesAttrs{
			Seasons:            *s.Seasons,
			EpisodesPerSeason:  cloneSlice(s.EpisodesPerSeason),
			AvgEpisodeDuration: *s.AvgEpisodeDuration,
		},
	}, nil
}

func missing(key string) error {
	return &RecordError{Key: key, Err: errMissingKey}
}

func withPosition(err error, kind model.ContentKind, index int) error {
	var re *RecordError
	if errors.As(err, &re) {
		re.Kind = kind
		re.Index = index
		return re
	}
	return &RecordError{Kind: kind, Index: index, Err: err}
}

// cloneSlice copies src, keeping an empty list non-nil so it serializes as
// [] rather than null.
func cloneSlice[T any](src []T) []T {
	out := make([]T, len(src))
	copy(out, src)
	return out
}
