package model

import "fmt"

// ContentKind discriminates the two catalog variants.
type ContentKind string

const (
	KindMovie  ContentKind = "movie"
	KindSeries ContentKind = "series"
)

// Valid reports whether k is one of the known kinds.
func (k ContentKind) Valid() bool {
	return k == KindMovie || k == KindSeries
}

// MovieAttrs holds the attributes only a movie has.
type MovieAttrs struct {
	DurationMinutes int `validate:"gte=0"`
	ReleaseYear     int
}

// SeriesAttrs holds the attributes only a series has. AvgEpisodeDuration
// also stands in as the content duration wherever one figure is needed.
type SeriesAttrs struct {
	Seasons            int   `validate:"gte=0"`
	EpisodesPerSeason  []int `validate:"dive,gte=0"`
	AvgEpisodeDuration int   `validate:"gte=0"`
}

// Content is one catalog item, either a movie or a series. Exactly one
// of Movie and Series is non-nil and it matches Kind; the reconcile
// package is the only place that builds these values from raw input.
//
// Fields:
//
//	ID               – content.content_id, unique across both kinds.
//	Title            – content.title.
//	Genre            – ordered genre tags (JSON in the relational store).
//	Kind             – content.content_type.
//	Rating           – content.rating.
//	Views            – movie views_count or series total_views.
//	ProductionBudget – content.production_budget in currency units.
type Content struct {
	ID               string `validate:"required"`
	Title            string
	Genre            []string
	Kind             ContentKind `validate:"oneof=movie series"`
	Rating           float64
	Views            int64
	ProductionBudget int64
	Movie            *MovieAttrs
	Series           *SeriesAttrs
}

// DurationMinutes returns the single duration figure used for the
// `duration_minutes` column and for engagement ratios: the running time
// of a movie or the average episode length of a series.
func (c Content) DurationMinutes() int {
	switch c.Kind {
	case KindMovie:
		if c.Movie != nil {
			return c.Movie.DurationMinutes
		}
	case KindSeries:
		if c.Series != nil {
			return c.Series.AvgEpisodeDuration
		}
	}
	return 0
}

// ReleaseYear is nil for series.
func (c Content) ReleaseYear() *int {
	if c.Kind != KindMovie || c.Movie == nil {
		return nil
	}
	y := c.Movie.ReleaseYear
	return &y
}

// Seasons is nil for movies.
func (c Content) Seasons() *int {
	if c.Kind != KindSeries || c.Series == nil {
		return nil
	}
	s := c.Series.Seasons
	return &s
}

// AvgEpisodeDuration is nil for movies.
func (c Content) AvgEpisodeDuration() *int {
	if c.Kind != KindSeries || c.Series == nil {
		return nil
	}
	d := c.Series.AvgEpisodeDuration
	return &d
}

// EpisodesPerSeason is nil for movies.
func (c Content) EpisodesPerSeason() []int {
	if c.Kind != KindSeries || c.Series == nil {
		return nil
	}
	return c.Series.EpisodesPerSeason
}

// Check verifies the variant invariant: the payload that is set matches
// Kind and the other one is absent.
func (c Content) Check() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("content %s: unknown kind %q", c.ID, c.Kind)
	}
	switch c.Kind {
	case KindMovie:
		if c.Movie == nil || c.Series != nil {
			return fmt.Errorf("content %s: movie must carry only movie attributes", c.ID)
		}
	case KindSeries:
		if c.Series == nil || c.Movie != nil {
			return fmt.Errorf("content %s: series must carry only series attributes", c.ID)
		}
	}
	return nil
}
