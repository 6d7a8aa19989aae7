package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/docstore"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/queue"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/source"
)

const (
	usersCSV = "user_id,age,country,subscription_type,registration_date,total_watch_time_hours\n" +
		"U1,30,MX,Premium,2024-01-15,12.5\n" +
		"U2,44,US,Basic,2023-06-01,3\n"
	contentJSON = `{
		"movies": [{"content_id": "C1", "title": "Alpha", "genre": ["Drama"], "duration_minutes": 120,
			"release_year": 2020, "rating": 4.5, "views_count": 1000, "production_budget": 5000000}],
		"series": [{"content_id": "C2", "title": "Beta", "genre": ["Comedy"], "avg_episode_duration": 40,
			"rating": 4.0, "total_views": 200, "production_budget": 100, "seasons": 2, "episodes_per_season": [10, 8]}]
	}`
	sessionsCSV = "session_id,user_id,content_id,watch_date,watch_duration_minutes,completion_percentage,device_type,quality_level\n" +
		"S1,U1,C1,2024-02-01,90,75,Mobile,HD\n" +
		"S2,U2,C2,2024-02-02,20,50,Desktop,SD\n"
)

func writeSources(t *testing.T, sessions string) config.Sources {
	t.Helper()
	dir := t.TempDir()
	src := config.Sources{
		UsersCSV:    filepath.Join(dir, "users.csv"),
		ContentJSON: filepath.Join(dir, "content.json"),
		SessionsCSV: filepath.Join(dir, "viewing_sessions.csv"),
	}
	require.NoError(t, os.WriteFile(src.UsersCSV, []byte(usersCSV), 0o644))
	require.NoError(t, os.WriteFile(src.ContentJSON, []byte(contentJSON), 0o644))
	require.NoError(t, os.WriteFile(src.SessionsCSV, []byte(sessions), 0o644))
	return src
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	db, err := database.Open(context.Background(), database.SQLite,
		"file:"+filepath.Join(t.TempDir(), "etl.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return Deps{SQL: db, Dialect: database.SQLite}
}

type memColl struct{ n int64 }

func (c *memColl) DeleteAll(context.Context) (int64, error) {
	n := c.n
	c.n = 0
	return n, nil
}

func (c *memColl) InsertMany(_ context.Context, docs []any) (int, error) {
	c.n += int64(len(docs))
	return len(docs), nil
}

func (c *memColl) Count(context.Context) (int64, error) { return c.n, nil }

type memDocs map[string]*memColl

func (m memDocs) Collection(name string) docstore.Collection {
	if m[name] == nil {
		m[name] = &memColl{}
	}
	return m[name]
}

type fakeLocker struct {
	err      error
	acquired int
	released int
}

func (l *fakeLocker) Acquire(context.Context, string) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type fakePublisher struct {
	events []queue.LoadCompletedEvent
	err    error
}

func (p *fakePublisher) PublishLoadCompleted(_ context.Context, ev queue.LoadCompletedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func TestRunLoadsBothStores(t *testing.T) {
	deps := testDeps(t)
	docs := memDocs{}
	locker := &fakeLocker{}
	pub := &fakePublisher{}
	deps.Docs, deps.Locker, deps.Publisher = docs, locker, pub

	sum, err := NewPipeline(deps, Options{Sources: writeSources(t, sessionsCSV)}).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.True(t, sum.Locked)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
	assert.Len(t, sum.Tables, 6)
	assert.Empty(t, sum.Errors)
	assert.False(t, sum.FinishedAt.Before(sum.StartedAt))

	assert.Equal(t, int64(2), sum.Report.Users)
	assert.Equal(t, int64(2), sum.Report.ContentTotal)
	assert.Equal(t, int64(2), sum.Report.Sessions)
	assert.True(t, sum.Report.Passed())
	assert.Equal(t, map[string]int64{"users": 2, "content": 2, "viewing_sessions": 2}, sum.DocCounts)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, sum.RunID, ev.RunID)
	assert.True(t, ev.Passed)
	assert.Equal(t, int64(2), ev.Sessions)
}

func TestRunIsRepeatable(t *testing.T) {
	deps := testDeps(t)
	p := NewPipeline(deps, Options{Sources: writeSources(t, sessionsCSV), BatchSize: 1})
	first, err := p.Run(context.Background())
	require.NoError(t, err)
	second, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Report, second.Report)
	assert.False(t, second.Locked, "nil locker runs unlocked")
	assert.Nil(t, second.DocCounts, "nil docs skips the document load")
}

func TestRunAbortsOnMissingInput(t *testing.T) {
	deps := testDeps(t)
	pub := &fakePublisher{}
	deps.Publisher = pub
	src := writeSources(t, sessionsCSV)
	require.NoError(t, os.Remove(src.ContentJSON))

	sum, err := NewPipeline(deps, Options{Sources: src}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrMissingInput)
	assert.Empty(t, sum.Tables, "no store is touched")
	assert.Empty(t, pub.events)
}

func TestRunRefusesWhileLocked(t *testing.T) {
	deps := testDeps(t)
	deps.Locker = &fakeLocker{err: ErrRunInProgress}

	sum, err := NewPipeline(deps, Options{Sources: writeSources(t, sessionsCSV)}).Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, sum.Tables)
}

func TestRunDegradesWhenLockBackendDown(t *testing.T) {
	deps := testDeps(t)
	deps.Locker = &fakeLocker{err: errors.New("connection refused")}
	deps.Publisher = &fakePublisher{err: errors.New("broker down")}

	sum, err := NewPipeline(deps, Options{Sources: writeSources(t, sessionsCSV)}).Run(context.Background())
	require.NoError(t, err, "lock and publish failures are not fatal")
	assert.False(t, sum.Locked)
	assert.Len(t, sum.Tables, 3)
}

func TestRunReportsTableFailure(t *testing.T) {
	deps := testDeps(t)
	pub := &fakePublisher{}
	deps.Publisher = pub
	orphan := sessionsCSV + "S3,U404,C1,2024-02-03,10,5,Mobile,SD\n"

	sum, err := NewPipeline(deps, Options{Sources: writeSources(t, orphan)}).Run(context.Background())
	require.Error(t, err)
	require.Len(t, sum.Tables, 3)
	assert.Empty(t, sum.Tables[0].Error)
	assert.NotEmpty(t, sum.Tables[2].Error)
	assert.Len(t, sum.Errors, 1)
	assert.Equal(t, int64(2), sum.Report.Users, "verification still runs")

	require.Len(t, pub.events, 1)
	assert.False(t, pub.events[0].Passed)
}

func TestReadDataset(t *testing.T) {
	ds, err := ReadDataset(writeSources(t, sessionsCSV))
	require.NoError(t, err)
	assert.Len(t, ds.Users, 2)
	require.Len(t, ds.Content, 2)
	assert.Equal(t, "C1", ds.Content[0].ID)
	assert.Len(t, ds.Sessions, 2)

	bad := writeSources(t, sessionsCSV)
	require.NoError(t, os.WriteFile(bad.ContentJSON, []byte(`{"movies": []}`), 0o644))
	ds, err = ReadDataset(bad)
	assert.ErrorIs(t, err, source.ErrMalformedRecord)
	assert.Empty(t, ds.Users)
}

func TestRedisLockerUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	_, err := NewRedisLocker(rdb, 0).Acquire(context.Background(), "run-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunInProgress)
}
