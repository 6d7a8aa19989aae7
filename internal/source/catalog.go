package source

import (
	"errors"
	"io"

	"github.com/goccy/go-json"
)

// RawMovie is a movie object as it appears in content.json. Pointer fields
// distinguish an absent key from a zero value.
type RawMovie struct {
	ContentID        *string  `json:"content_id"`
	Title            *string  `json:"title"`
	Genre            []string `json:"genre"`
	DurationMinutes  *int     `json:"duration_minutes"`
	ReleaseYear      *int     `json:"release_year"`
	Rating           *float64 `json:"rating"`
	ViewsCount       *int64   `json:"views_count"`
	ProductionBudget *int64   `json:"production_budget"`
}

// RawSeries is a series object as it appears in content.json.
type RawSeries struct {
	ContentID          *string  `json:"content_id"`
	Title              *string  `json:"title"`
	Genre              []string `json:"genre"`
	AvgEpisodeDuration *int     `json:"avg_episode_duration"`
	Rating             *float64 `json:"rating"`
	TotalViews         *int64   `json:"total_views"`
	ProductionBudget   *int64   `json:"production_budget"`
	Seasons            *int     `json:"seasons"`
	EpisodesPerSeason  []int    `json:"episodes_per_season"`
}

// RawCatalog is the decoded content.json document. Both arrays keep the
// file order.
type RawCatalog struct {
	Movies []RawMovie
	Series []RawSeries
}

type catalogDoc struct {
	Movies *[]RawMovie  `json:"movies"`
	Series *[]RawSeries `json:"series"`
}

// ReadCatalog decodes content.json. Both top-level keys must be present;
// either array may be empty. Per-record field checks happen during
// reconciliation.
func ReadCatalog(path string) (RawCatalog, error) {
	f, err := openInput(path)
	if err != nil {
		return RawCatalog{}, err
	}
	defer f.Close()
	return decodeCatalog(path, f)
}

func decodeCatalog(path string, r io.Reader) (RawCatalog, error) {
	var doc catalogDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return RawCatalog{}, malformed(path, 0, "", err)
	}
	if doc.Movies == nil {
		return RawCatalog{}, malformed(path, 0, "movies", errors.New("missing key"))
	}
	if doc.Series == nil {
		return RawCatalog{}, malformed(path, 0, "series", errors.New("missing key"))
	}
	return RawCatalog{Movies: *doc.Movies, Series: *doc.Series}, nil
}
