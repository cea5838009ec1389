package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkoehler/ansel/model"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Put("photos/a-thumb.jpg", []byte("jpeg-bytes"))

	rc, err := s.Open(ctx, "photos/a-thumb.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("jpeg-bytes"), data)

	_, err = s.Open(ctx, "photos/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "thumb"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "thumb", "a.jpg"), []byte("bytes"), 0o644))

	s := NewLocalStore(root)

	rc, err := s.Open(ctx, "thumb/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("bytes"), data)

	_, err = s.Open(ctx, "thumb/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Open(ctx, "../outside")
	assert.Error(t, err)
}

func TestItemLocator(t *testing.T) {
	loc := NewItemLocator([]model.Item{
		{ID: "a", Locators: map[string]string{"thumb": "thumb/a.jpg"}},
		{ID: "b"},
	})

	key, ok := loc.Locate("a", model.TierThumb)
	assert.True(t, ok)
	assert.Equal(t, "thumb/a.jpg", key)

	_, ok = loc.Locate("a", model.TierFull)
	assert.False(t, ok)
	_, ok = loc.Locate("b", model.TierThumb)
	assert.False(t, ok)
	_, ok = loc.Locate("zz", model.TierThumb)
	assert.False(t, ok)
}

func TestFetcher(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put("thumb/a.jpg", []byte("thumb-a"))

	loc := NewItemLocator([]model.Item{
		{ID: "a", Locators: map[string]string{"thumb": "thumb/a.jpg", "full": "full/a.jpg"}},
	})
	f := NewFetcher(store, loc, nil)

	data, err := f.Fetch(ctx, "a", model.TierThumb)
	require.NoError(t, err)
	assert.Equal(t, []byte("thumb-a"), data)

	// Locator present, blob missing.
	_, err = f.Fetch(ctx, "a", model.TierFull)
	assert.ErrorIs(t, err, ErrNotFound)

	// No locator at all.
	_, err = f.Fetch(ctx, "a", model.TierMicro)
	assert.ErrorIs(t, err, ErrNoLocator)
}

// bulkMemoryStore adds a counted bulk path on top of MemoryStore.
type bulkMemoryStore struct {
	*MemoryStore
	downloads []string
}

func (s *bulkMemoryStore) Download(ctx context.Context, key string) ([]byte, error) {
	s.downloads = append(s.downloads, key)
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func TestFetcherRoutesFullTierThroughBulkStore(t *testing.T) {
	ctx := context.Background()
	store := &bulkMemoryStore{MemoryStore: NewMemoryStore()}
	store.Put("thumb/a.jpg", []byte("thumb-a"))
	store.Put("full/a.jpg", []byte("full-a"))

	loc := NewItemLocator([]model.Item{
		{ID: "a", Locators: map[string]string{"thumb": "thumb/a.jpg", "full": "full/a.jpg"}},
	})
	f := NewFetcher(store, loc, nil)

	data, err := f.Fetch(ctx, "a", model.TierThumb)
	require.NoError(t, err)
	assert.Equal(t, []byte("thumb-a"), data)
	assert.Empty(t, store.downloads, "small tiers stay on the streamed path")

	data, err = f.Fetch(ctx, "a", model.TierFull)
	require.NoError(t, err)
	assert.Equal(t, []byte("full-a"), data)
	assert.Equal(t, []string{"full/a.jpg"}, store.downloads)

	// Bulk misses keep the not-found contract.
	store.Delete("full/a.jpg")
	_, err = f.Fetch(ctx, "a", model.TierFull)
	assert.ErrorIs(t, err, ErrNotFound)
}
