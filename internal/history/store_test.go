package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"), "local", testutil.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewStoreSession(t *testing.T) {
	s := newTestStore(t)
	_, err := uuid.Parse(s.SessionID())
	assert.NoError(t, err)

	other := newTestStore(t)
	assert.NotEqual(t, s.SessionID(), other.SessionID())
}

func TestAddAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.UnixMilli(1_700_000_000_000)

	for i, q := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		err := s.Add(ctx, Entry{
			SessionID:  "s1",
			Query:      q,
			ExecutedAt: base.Add(time.Duration(i) * time.Second),
			Duration:   1500 * time.Microsecond,
			Rows:       i,
			Success:    true,
		})
		require.NoError(t, err)
	}

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "SELECT 3", entries[0].Query)
	assert.Equal(t, "SELECT 2", entries[1].Query)
	assert.Equal(t, 2, entries[0].Rows)
	assert.Equal(t, 1500*time.Microsecond, entries[0].Duration)
	assert.True(t, entries[0].Success)
	assert.True(t, entries[0].ExecutedAt.Equal(base.Add(2*time.Second)))
}

func TestAddFillsTime(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fixed := time.UnixMilli(1_650_000_000_000)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Add(ctx, Entry{Query: "SELECT 1"}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].ExecutedAt.Equal(fixed))
}

func TestSearchMatchesLiterally(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, q := range []string{
		`SELECT * FROM "Items" WHERE "Title" LIKE ?`,
		`SELECT 50% discount`,
		`SELECT 500 FROM t`,
		`SELECT COUNT(*) FROM "Items"`,
	} {
		require.NoError(t, s.Add(ctx, Entry{Query: q}))
	}

	entries, err := s.Search(ctx, "items", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = s.Search(ctx, "50%", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, `SELECT 50% discount`, entries[0].Query)

	entries, err = s.Search(ctx, "COUNT", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.UnixMilli(1_700_000_000_000)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(ctx, Entry{Query: "q", ExecutedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	n, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].ExecutedAt.Equal(base.Add(3*time.Minute)))
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var rec db.Recorder = s
	rec.Record(db.QueryRecord{Query: "SELECT * FROM t WHERE a = ?", Args: []any{1}, Rows: 4, Duration: time.Millisecond})
	rec.Record(db.QueryRecord{Query: "SELECT broken", Err: errors.New("syntax error")})

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var ok, failed Entry
	for _, e := range entries {
		if e.Success {
			ok = e
		} else {
			failed = e
		}
	}

	assert.Equal(t, s.SessionID(), ok.SessionID)
	assert.Equal(t, "local", ok.ConnectionName)
	assert.Equal(t, "[1]", ok.Args)
	assert.Equal(t, 4, ok.Rows)
	assert.Equal(t, "syntax error", failed.ErrorMessage)
	assert.Equal(t, "", failed.Args)
}

func TestRecordAfterCloseDoesNotPanic(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	assert.NotPanics(t, func() {
		s.Record(db.QueryRecord{Query: "SELECT 1"})
	})
}
