package queue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() LoadCompletedEvent {
	return LoadCompletedEvent{
		RunID:      "run-1",
		StartedAt:  "2024-02-01T10:00:00Z",
		FinishedAt: "2024-02-01T10:01:00Z",
		Users:      10,
		Content:    4,
		Sessions:   100,
		Passed:     true,
	}
}

func TestFormatLine(t *testing.T) {
	ev := sampleEvent()
	assert.Equal(t,
		"[2024-02-01T10:01:00Z] ETL run PASSED | run_id=run-1 | started=2024-02-01T10:00:00Z | users=10 | content=4 | sessions=100 | orphan_users=0 | orphan_content=0 | errors=[]\n",
		FormatLine(ev))

	ev.Passed = false
	ev.OrphanUserRefs = 3
	ev.Errors = []string{"load viewing_sessions: rolled back", "boom"}
	line := FormatLine(ev)
	assert.Contains(t, line, "ETL run FAILED")
	assert.Contains(t, line, "orphan_users=3")
	assert.Contains(t, line, "errors=[load viewing_sessions: rolled back; boom]")
}

func TestHandleMessageAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	for _, id := range []string{"run-1", "run-2"} {
		ev := sampleEvent()
		ev.RunID = id
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, HandleMessage(dir, body))
	}

	b, err := os.ReadFile(filepath.Join(dir, RunLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run_id=run-1")
	assert.Contains(t, lines[1], "run_id=run-2")
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, HandleMessage(dir, []byte("{not json")))
	assert.Error(t, HandleMessage(dir, []byte(`{"users": 1}`)), "run_id is required")

	_, err := os.Stat(filepath.Join(dir, RunLogFile))
	assert.True(t, os.IsNotExist(err))
}
