package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/source"
)

func ptr[T any](v T) *T { return &v }

func rawMovie(id string) source.RawMovie {
	return source.RawMovie{
		ContentID:        ptr(id),
		Title:            ptr("Movie " + id),
		Genre:            []string{"Drama"},
		DurationMinutes:  ptr(120),
		ReleaseYear:      ptr(2021),
		Rating:           ptr(4.2),
		ViewsCount:       ptr(int64(1500)),
		ProductionBudget: ptr(int64(2_000_000)),
	}
}

func rawSeries(id string) source.RawSeries {
	return source.RawSeries{
		ContentID:          ptr(id),
		Title:              ptr("Series " + id),
		Genre:              []string{"Comedy", "Drama"},
		AvgEpisodeDuration: ptr(42),
		Rating:             ptr(3.9),
		TotalViews:         ptr(int64(900)),
		ProductionBudget:   ptr(int64(500_000)),
		Seasons:            ptr(3),
		EpisodesPerSeason:  []int{10, 12, 8},
	}
}

func TestReconcileOrderAndShape(t *testing.T) {
	raw := source.RawCatalog{
		Movies: []source.RawMovie{rawMovie("M1"), rawMovie("M2")},
		Series: []source.RawSeries{rawSeries("S1")},
	}
	got, err := Reconcile(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"M1", "M2", "S1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	m := got[0]
	assert.Equal(t, model.KindMovie, m.Kind)
	assert.Equal(t, 120, m.DurationMinutes())
	require.NotNil(t, m.ReleaseYear())
	assert.Equal(t, 2021, *m.ReleaseYear())
	assert.Equal(t, int64(1500), m.Views)
	assert.Nil(t, m.Seasons())
	assert.Nil(t, m.AvgEpisodeDuration())
	assert.Nil(t, m.EpisodesPerSeason())
	assert.NoError(t, m.Check())

	s := got[2]
	assert.Equal(t, model.KindSeries, s.Kind)
	assert.Equal(t, 42, s.DurationMinutes(), "series duration is the average episode length")
	assert.Equal(t, int64(900), s.Views, "series views come from total_views")
	assert.Nil(t, s.ReleaseYear())
	require.NotNil(t, s.Seasons())
	assert.Equal(t, 3, *s.Seasons())
	assert.Equal(t, []int{10, 12, 8}, s.EpisodesPerSeason())
	assert.NoError(t, s.Check())
}

func TestReconcileEmptyCatalog(t *testing.T) {
	got, err := Reconcile(source.RawCatalog{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReconcileKeepsEmptyListsNonNil(t *testing.T) {
	s := rawSeries("S1")
	s.Genre = []string{}
	s.EpisodesPerSeason = []int{}
	got, err := Reconcile(source.RawCatalog{Series: []source.RawSeries{s}})
	require.NoError(t, err)
	assert.NotNil(t, got[0].Genre)
	assert.NotNil(t, got[0].EpisodesPerSeason())
}

func TestReconcileMissingKeys(t *testing.T) {
	noDuration := rawMovie("M2")
	noDuration.DurationMinutes = nil
	noEpisodes := rawSeries("S1")
	noEpisodes.EpisodesPerSeason = nil
	noViews := rawSeries("S2")
	noViews.TotalViews = nil

	tests := []struct {
		name  string
		raw   source.RawCatalog
		kind  model.ContentKind
		index int
		key   string
	}{
		{
			name:  "movie without duration",
			raw:   source.RawCatalog{Movies: []source.RawMovie{rawMovie("M1"), noDuration}},
			kind:  model.KindMovie,
			index: 1,
			key:   "duration_minutes",
		},
		{
			name:  "series without episodes",
			raw:   source.RawCatalog{Series: []source.RawSeries{noEpisodes}},
			kind:  model.KindSeries,
			index: 0,
			key:   "episodes_per_season",
		},
		{
			name:  "series without total views",
			raw:   source.RawCatalog{Movies: []source.RawMovie{rawMovie("M1")}, Series: []source.RawSeries{rawSeries("S1"), noViews}},
			kind:  model.KindSeries,
			index: 1,
			key:   "total_views",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.raw)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, source.ErrMalformedRecord)

			var re *RecordError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.kind, re.Kind)
			assert.Equal(t, tt.index, re.Index)
			assert.Equal(t, tt.key, re.Key)
		})
	}
}

func TestReconcileDuplicateIDAcrossKinds(t *testing.T) {
	raw := source.RawCatalog{
		Movies: []source.RawMovie{rawMovie("C1")},
		Series: []source.RawSeries{rawSeries("C1")},
	}
	_, err := Reconcile(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrMalformedRecord)

	var re *RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, model.KindSeries, re.Kind)
	assert.Equal(t, "content_id", re.Key)
}

func TestReconcileRejectsInvalidValues(t *testing.T) {
	empty := rawMovie("")
	negative := rawSeries("S1")
	negative.EpisodesPerSeason = []int{10, -1}

	for name, raw := range map[string]source.RawCatalog{
		"empty id":         {Movies: []source.RawMovie{empty}},
		"negative episode": {Series: []source.RawSeries{negative}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Reconcile(raw)
			assert.ErrorIs(t, err, source.ErrMalformedRecord)
		})
	}
}

func TestReconcileDoesNotAliasInput(t *testing.T) {
	s := rawSeries("S1")
	got, err := Reconcile(source.RawCatalog{Series: []source.RawSeries{s}})
	require.NoError(t, err)
	s.EpisodesPerSeason[0] = 99
	s.Genre[0] = "Horror"
	assert.Equal(t, 10, got[0].EpisodesPerSeason()[0])
	assert.Equal(t, "Comedy", got[0].Genre[0])
}
