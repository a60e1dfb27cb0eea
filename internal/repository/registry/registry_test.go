package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
)

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Items.csv")
	store := NewCSVStore(path, "Station A", nil)
	store.now = func() time.Time {
		return time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)
	}
	return store
}

func TestCSVStoreBootstrap(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("missing file yields empty table and header", func(t *testing.T) {
		records, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)

		content, err := os.ReadFile(store.path)
		require.NoError(t, err)
		assert.Equal(t, "Item_ID,Type,Text,Timestamp,Location\n", string(content))
	})

	t.Run("second load returns the same empty table", func(t *testing.T) {
		records, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("empty file is re-initialized", func(t *testing.T) {
		require.NoError(t, os.WriteFile(store.path, nil, 0o644))

		records, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)

		content, err := os.ReadFile(store.path)
		require.NoError(t, err)
		assert.Equal(t, "Item_ID,Type,Text,Timestamp,Location\n", string(content))
	})
}

func TestCSVStoreAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("first insert wins", func(t *testing.T) {
		store := newTestStore(t)

		record, added, err := store.Add(ctx, "ABC123", "QRCODE", "", "Station A")
		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, "ABC123", record.ItemID)
		assert.Equal(t, "2026-08-28 10:30:00", record.Timestamp)

		duplicate, added, err := store.Add(ctx, "ABC123", "QRCODE", "", "Station B")
		require.NoError(t, err)
		assert.False(t, added)
		assert.Equal(t, "Station A", duplicate.Location)

		records, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Station A", records[0].Location)
	})

	t.Run("empty location falls back to the station label", func(t *testing.T) {
		store := newTestStore(t)

		record, added, err := store.Add(ctx, "XYZ789", "CODE128", "", "")
		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, "Station A", record.Location)
	})

	t.Run("item ids are case-sensitive", func(t *testing.T) {
		store := newTestStore(t)

		_, added, err := store.Add(ctx, "abc", "QRCODE", "", "")
		require.NoError(t, err)
		assert.True(t, added)

		_, added, err = store.Add(ctx, "ABC", "QRCODE", "", "")
		require.NoError(t, err)
		assert.True(t, added)

		records, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestCSVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, _, err := store.Add(ctx, "ITEM01", "QRCODE", "", "")
	require.NoError(t, err)
	_, _, err = store.Add(ctx, "text_12", models.TypeOCR, "hello, world", "Station B")
	require.NoError(t, err)

	before, err := os.ReadFile(store.path)
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, loaded))

	after, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestCSVStoreSearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"ITEM01", "ITEM02", "OTHER"} {
		_, _, err := store.Add(ctx, id, "QRCODE", "", "")
		require.NoError(t, err)
	}

	t.Run("substring match preserves registry order", func(t *testing.T) {
		matches, err := store.Search(ctx, "ITEM")
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "ITEM01", matches[0].ItemID)
		assert.Equal(t, "ITEM02", matches[1].ItemID)
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		matches, err := store.Search(ctx, "item")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("empty substring matches everything", func(t *testing.T) {
		matches, err := store.Search(ctx, "")
		require.NoError(t, err)
		assert.Len(t, matches, 3)
	})
}

func TestCSVStoreAtomicSave(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, _, err := store.Add(ctx, "ITEM01", "QRCODE", "", "")
	require.NoError(t, err)

	// The temp file used for the rename is cleaned up after every save.
	entries, err := os.ReadDir(filepath.Dir(store.path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(store.path), entries[0].Name())
}

func TestCSVStoreLoadPadsShortRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	content := "Item_ID,Type,Text,Timestamp,Location\nITEM01,QRCODE\n"
	require.NoError(t, os.WriteFile(store.path, []byte(content), 0o644))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ITEM01", records[0].ItemID)
	assert.Equal(t, "", records[0].Location)
}
