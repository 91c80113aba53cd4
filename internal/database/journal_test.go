package database

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-jessen/enginectl/internal/settings"
	"github.com/patrick-jessen/enginectl/internal/settingsync"
)

func TestJournalRecordsWritesAndCommits(t *testing.T) {
	t.Parallel()
	ctx, manager := newTestManager(t, MemoryDSN)
	journal := NewJournal(manager)

	at := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, journal.Record(settingsync.Record{
		At:     at,
		Engine: "http://localhost:8000/",
		Group:  settings.GroupTexture,
		Key:    settings.TextureFilter,
		Wire:   settings.FilterWire{Filter: settings.FilterBilinearConst, Aniso: 8},
	}))
	require.NoError(t, journal.Record(settingsync.Record{
		At:     at.Add(time.Second),
		Engine: "http://localhost:8000/",
		Group:  settings.GroupTexture,
		Err:    errors.New("engine unavailable"),
	}))

	entries, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	commit := entries[0]
	assert.True(t, commit.Commit())
	assert.Equal(t, OutcomeFailed, commit.Outcome)
	assert.Equal(t, "engine unavailable", commit.Error)
	assert.Empty(t, commit.Wire)

	write := entries[1]
	assert.False(t, write.Commit())
	assert.Equal(t, "texture", write.Group)
	assert.Equal(t, "texture.filter", write.Key)
	assert.JSONEq(t, `{"filter":9985,"aniso":8}`, write.Wire)
	assert.Equal(t, OutcomeOK, write.Outcome)
	assert.Empty(t, write.Error)
	assert.True(t, at.Equal(write.At))
}

func TestJournalRecentLimit(t *testing.T) {
	t.Parallel()
	ctx, manager := newTestManager(t, MemoryDSN)
	journal := NewJournal(manager)

	for i := range 5 {
		require.NoError(t, journal.Record(settingsync.Record{
			Engine: "e",
			Group:  settings.GroupRenderer,
			Key:    settings.RendererAntialiasing,
			Wire:   settings.AntialiasingWire{AA: i},
		}))
	}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "fewer than stored", n: 3, want: 3},
		{name: "more than stored", n: 50, want: 5},
		{name: "zero", n: 0, want: 0},
		{name: "negative", n: -1, want: 0},
	}

	for _, tt := range tests {
		entries, err := journal.Recent(ctx, tt.n)
		require.NoError(t, err, tt.name)
		assert.Len(t, entries, tt.want, tt.name)
	}

	entries, err := journal.Recent(ctx, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"aa":4}`, entries[0].Wire)
}

func TestJournalRejectsUnencodableWire(t *testing.T) {
	t.Parallel()
	_, manager := newTestManager(t, MemoryDSN)

	err := NewJournal(manager).Record(settingsync.Record{Wire: make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode wire value")
}

func TestJournalConcurrentRecords(t *testing.T) {
	t.Parallel()
	ctx, manager := newTestManager(t, filepath.Join(t.TempDir(), "history.db"))
	journal := NewJournal(manager)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, journal.Record(settingsync.Record{
				Engine: "e",
				Group:  settings.GroupRenderer,
				Key:    settings.RendererShadowResolution,
				Wire:   settings.ShadowResolutionWire{ShadowRes: 512 << (i % 4)},
			}))
		}()
	}
	wg.Wait()

	entries, err := journal.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}
