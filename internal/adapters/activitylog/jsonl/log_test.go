package jsonl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stepClock struct {
	times []time.Time
	i     int
}

func (c *stepClock) Now() time.Time {
	if c.i >= len(c.times) {
		return c.times[len(c.times)-1]
	}
	now := c.times[c.i]
	c.i++
	return now
}

func newTestLog(t *testing.T, opts Options) *Log {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "activity_log.jsonl"), opts)
}

func TestAppendPreservesOrderAndMonotonicTimestamps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &stepClock{times: []time.Time{
		base,
		base.Add(-time.Hour),
		base.Add(time.Minute),
	}}
	log := newTestLog(t, Options{Clock: clock, SessionID: "session-1"})

	first := log.Append(domain.ActivityEntry{Action: domain.ActionListFolderContents, Status: domain.StatusPendingExecution})
	second := log.Append(domain.ActivityEntry{Action: domain.ActionSearchFiles, Status: domain.StatusPendingExecution})
	third := log.Append(domain.ActivityEntry{Action: domain.ActionSummarizeFile, Status: domain.StatusPendingExecution})

	entries := log.Recent(10)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, domain.ActionListFolderContents, entries[0].Action)
	assert.Equal(t, domain.ActionSummarizeFile, entries[2].Action)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp), "timestamps must not go backwards")
	}
	assert.Equal(t, base, entries[1].Timestamp)
	assert.Equal(t, "session-1", entries[0].SessionID)
}

func TestAppendWritesOneJSONObjectPerLine(t *testing.T) {
	t.Parallel()

	log := newTestLog(t, Options{})
	log.Append(domain.ActivityEntry{
		Action:     domain.ActionMoveItem,
		Parameters: domain.Params{domain.ParamSourcePath: "/tmp/x.txt"},
		Status:     domain.StatusPendingExecution,
		Details:    "moving",
	})
	log.Append(domain.ActivityEntry{Action: domain.ActionGeneralChat, Status: domain.StatusSuccess})

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"action":"move_item"`)
	assert.Contains(t, lines[0], `"source_path":"/tmp/x.txt"`)
	assert.Contains(t, lines[0], `"status":"pending_execution"`)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestUpdateLastAndUpdateByReference(t *testing.T) {
	t.Parallel()

	log := newTestLog(t, Options{})
	step := log.Append(domain.ActivityEntry{Action: domain.ActionOrganize, Status: domain.StatusPendingExecution})
	log.Append(domain.ActivityEntry{Action: domain.ActionExecOrgCreateFolder, Status: domain.StatusPendingExecution})

	log.UpdateLast(domain.StatusSuccess, "created", nil)
	log.Update(step, domain.StatusPartialSuccess, "1 of 2 succeeded", map[string]any{"succeeded": 1})

	entries := log.Recent(2)
	require.Len(t, entries, 2)

	assert.Equal(t, step.ID, entries[0].ID)
	assert.Equal(t, domain.StatusPartialSuccess, entries[0].Status)
	assert.Equal(t, "1 of 2 succeeded", entries[0].Details)
	assert.Equal(t, float64(1), entries[0].ResultData["succeeded"])

	assert.Equal(t, domain.StatusSuccess, entries[1].Status)
	assert.Equal(t, "created", entries[1].Details)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(log.Path()), ".activity-*.jsonl.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpdateKeepsMalformedLines(t *testing.T) {
	t.Parallel()

	log := newTestLog(t, Options{})
	log.Append(domain.ActivityEntry{Action: domain.ActionGeneralChat, Status: domain.StatusPendingExecution})

	file, err := os.OpenFile(log.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	log.UpdateLast(domain.StatusSuccess, "ok", nil)

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "{not json")

	entries := log.Recent(5)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusSuccess, entries[0].Status)
}

func TestRecentReturnsTailInChronologicalOrder(t *testing.T) {
	t.Parallel()

	log := newTestLog(t, Options{})
	for _, detail := range []string{"a", "b", "c", "d"} {
		log.Append(domain.ActivityEntry{Action: domain.ActionGeneralChat, Details: detail})
	}

	entries := log.Recent(2)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Details)
	assert.Equal(t, "d", entries[1].Details)

	assert.Nil(t, log.Recent(0))
	assert.Len(t, log.Recent(100), 4)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	clock := &stepClock{times: []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}}
	log := newTestLog(t, Options{Clock: clock, LookupWindow: 2})

	oldest := log.Append(domain.ActivityEntry{Action: domain.ActionListFolderContents, Details: "oldest"})
	log.Append(domain.ActivityEntry{Action: domain.ActionSearchFiles, Details: "middle"})
	newest := log.Append(domain.ActivityEntry{Action: domain.ActionRedoActivity, Details: "newest"})

	tests := []struct {
		name       string
		identifier string
		skip       []string
		want       string
		wantErr    bool
	}{
		{name: "last", identifier: "last", want: "newest"},
		{name: "last is case insensitive", identifier: " LAST ", want: "newest"},
		{name: "recency index", identifier: "2", want: "middle"},
		{name: "timestamp substring", identifier: "T10:15", want: "middle"},
		{name: "skip shifts recency", identifier: "last", skip: []string{newest.ID}, want: "middle"},
		{name: "id prefix", identifier: newest.ID[:8], want: "newest"},
		{name: "outside window by index", identifier: "3", wantErr: true},
		{name: "outside window by timestamp", identifier: "T09:15", wantErr: true},
		{name: "outside window by id", identifier: oldest.ID, wantErr: true},
		{name: "zero index", identifier: "0", wantErr: true},
		{name: "empty", identifier: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entry, err := log.Lookup(tt.identifier, tt.skip...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrActivityNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Details)
		})
	}
}

func TestLookupOnEmptyLog(t *testing.T) {
	t.Parallel()

	_, err := newTestLog(t, Options{}).Lookup("last")
	assert.True(t, errors.Is(err, domain.ErrActivityNotFound))
}

func TestAppendRotatesOversizedLog(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 30, 45, 0, time.Local)
	log := newTestLog(t, Options{MaxBytes: 64, Clock: &stepClock{times: []time.Time{now}}})

	log.Append(domain.ActivityEntry{Action: domain.ActionGeneralChat, Details: strings.Repeat("x", 100)})
	log.Append(domain.ActivityEntry{Action: domain.ActionGeneralChat, Details: "fresh"})

	rotated := log.Path() + ".20260301123045.old"
	_, err := os.Stat(rotated)
	require.NoError(t, err)

	entries := log.Recent(10)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Details)
}

func TestUpdateAfterRotationAppendsCorrectiveEntry(t *testing.T) {
	t.Parallel()

	log := newTestLog(t, Options{MaxBytes: 1024})

	step := log.Append(domain.ActivityEntry{
		Action:  domain.ActionOrganize,
		Status:  domain.StatusPendingExecution,
		Details: strings.Repeat("x", 2048),
	})
	log.Append(domain.ActivityEntry{Action: domain.ActionExecOrgMoveItem, Status: domain.StatusSuccess})

	entries := log.Recent(10)
	require.Len(t, entries, 1)
	require.NotEqual(t, step.ID, entries[0].ID)

	log.Update(step, domain.StatusPartialSuccess, "1 of 2 succeeded", map[string]any{"succeeded": 1})

	entries = log.Recent(10)
	require.Len(t, entries, 2)
	assert.Equal(t, step.ID, entries[1].ID)
	assert.Equal(t, domain.ActionOrganize, entries[1].Action)
	assert.Equal(t, domain.StatusPartialSuccess, entries[1].Status)
	assert.Equal(t, "1 of 2 succeeded", entries[1].Details)
	assert.Equal(t, float64(1), entries[1].ResultData["succeeded"])

	found, err := log.Lookup(step.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartialSuccess, found.Status)

	log.Update(step, domain.StatusFailed, "again", nil)
	assert.Len(t, log.Recent(10), 2)
}

func TestFailuresAreLoggedNotRaised(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o600))

	core, recorded := observer.New(zapcore.WarnLevel)
	log := New(filepath.Join(blocker, "activity_log.jsonl"), Options{Logger: zap.New(core)})

	ref := log.Append(domain.ActivityEntry{Action: domain.ActionGeneralChat})
	assert.True(t, ref.Valid())

	log.UpdateLast(domain.StatusSuccess, "", nil)
	assert.Empty(t, log.Recent(5))
	assert.NotZero(t, recorded.Len())
}
