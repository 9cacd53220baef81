package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawnet/httpc/packages/executor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Record(&executor.Outcome{
		ID:            "run-1",
		Method:        "GET",
		URL:           "http://example.com/old",
		FinalURL:      "http://example.com/new",
		StatusCode:    200,
		RedirectCount: 1,
		Elapsed:       42 * time.Millisecond,
	}))
	require.NoError(t, s.Record(&executor.Outcome{
		ID:        "run-2",
		Method:    "POST",
		URL:       "http://example.com/submit",
		FinalURL:  "http://example.com/submit",
		FromCache: false,
	}))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[string]Entry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	first := byID["run-1"]
	assert.Equal(t, "GET", first.Method)
	assert.Equal(t, "http://example.com/new", first.FinalURL)
	assert.Equal(t, 1, first.Redirects)
	assert.Equal(t, int64(42), first.DurationMS)
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(&executor.Outcome{
			ID:       string(rune('a' + i)),
			Method:   "GET",
			URL:      "http://example.com/",
			FinalURL: "http://example.com/",
		}))
	}

	entries, err := s.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)
	entries, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
