package tilecache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkoehler/ansel/blobstore"
	"github.com/fkoehler/ansel/model"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// fakeFetcher serves canned bytes per (id, tier), counts calls, and can be
// gated so completions happen on the test's clock.
type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	errs  map[string]error
	calls map[string]int
	gate  chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		data:  make(map[string][]byte),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func fkey(id model.ItemID, tier model.Tier) string {
	return fmt.Sprintf("%s/%s", id, tier)
}

func (f *fakeFetcher) set(id model.ItemID, tier model.Tier, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[fkey(id, tier)] = data
}

func (f *fakeFetcher) fail(id model.ItemID, tier model.Tier, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[fkey(id, tier)] = err
}

func (f *fakeFetcher) callCount(id model.ItemID, tier model.Tier) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fkey(id, tier)]
}

func (f *fakeFetcher) Fetch(_ context.Context, id model.ItemID, tier model.Tier) ([]byte, error) {
	f.mu.Lock()
	f.calls[fkey(id, tier)]++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[fkey(id, tier)]; ok {
		return nil, err
	}
	if data, ok := f.data[fkey(id, tier)]; ok {
		return data, nil
	}
	return nil, blobstore.ErrNotFound
}

func waitState(t *testing.T, c *Cache, id model.ItemID, tier model.Tier, want LoadState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.State(id, tier) == want
	}, 2*time.Second, 2*time.Millisecond, "entry (%s,%s) never reached %s", id, tier, want)
}

func TestRequestMissThenHit(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierThumb, pngBytes(t, 4, 3))
	c := New(Config{Fetcher: f})

	_, ok := c.Request(ctx, "x", model.TierThumb)
	assert.False(t, ok, "first request must miss")

	waitState(t, c, "x", model.TierThumb, StateLoaded)

	h, ok := c.Request(ctx, "x", model.TierThumb)
	require.True(t, ok)
	assert.Equal(t, model.TierThumb, h.Tier)
	assert.Equal(t, 4, h.Image.Bounds().Dx())

	// A loaded tier is never re-fetched in the same session.
	assert.Equal(t, 1, f.callCount("x", model.TierThumb))
}

func TestFetchDeduplication(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierThumb, pngBytes(t, 2, 2))
	f.gate = make(chan struct{})
	c := New(Config{Fetcher: f})

	for range 8 {
		c.Request(ctx, "x", model.TierThumb)
	}
	assert.Equal(t, StatePending, c.State("x", model.TierThumb))

	close(f.gate)
	waitState(t, c, "x", model.TierThumb, StateLoaded)
	assert.Equal(t, 1, f.callCount("x", model.TierThumb), "concurrent requests must share one fetch")
}

func TestStaleResultGuard(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierThumb, pngBytes(t, 2, 2))
	f.gate = make(chan struct{})
	c := New(Config{Fetcher: f})

	var focused atomic.Value
	focused.Store(model.ItemID("x"))
	token := Token(func(id model.ItemID) bool { return focused.Load().(model.ItemID) == id })

	var delivered atomic.Int32
	c.RequestFor(ctx, "x", model.TierThumb, token, func(Handle) { delivered.Add(1) })

	// The user navigates away before the fetch completes.
	focused.Store(model.ItemID("y"))
	close(f.gate)

	// X's own entry still receives the result...
	waitState(t, c, "x", model.TierThumb, StateLoaded)
	// ...but nothing was delivered to visible state, and Y is untouched.
	assert.Equal(t, int32(0), delivered.Load())
	assert.Equal(t, StateUnrequested, c.State("y", model.TierThumb))
}

func TestFreshDelivery(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierThumb, pngBytes(t, 2, 2))
	c := New(Config{Fetcher: f})

	got := make(chan Handle, 1)
	c.RequestFor(ctx, "x", model.TierThumb, func(model.ItemID) bool { return true }, func(h Handle) { got <- h })

	select {
	case h := <-got:
		assert.True(t, h.Valid())
		assert.Equal(t, model.TierThumb, h.Tier)
	case <-time.After(2 * time.Second):
		t.Fatal("fresh completion was never delivered")
	}
}

func TestFailureDegradesSilently(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierThumb, pngBytes(t, 2, 2))
	f.fail("x", model.TierDisplay, errors.New("origin down"))
	c := New(Config{Fetcher: f})

	c.Request(ctx, "x", model.TierThumb)
	waitState(t, c, "x", model.TierThumb, StateLoaded)

	c.Request(ctx, "x", model.TierDisplay)
	waitState(t, c, "x", model.TierDisplay, StateFailed)

	// Failed entries answer false, and the best earlier tier keeps serving.
	_, ok := c.Request(ctx, "x", model.TierDisplay)
	assert.False(t, ok)
	best, ok := c.BestLoaded("x")
	require.True(t, ok)
	assert.Equal(t, model.TierThumb, best.Tier)
}

func TestBestLoadedPrefersHighestTier(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierMicro, pngBytes(t, 1, 1))
	f.set("x", model.TierDisplay, pngBytes(t, 8, 8))
	c := New(Config{Fetcher: f})

	if _, ok := c.BestLoaded("x"); ok {
		t.Fatal("nothing loaded yet")
	}

	c.Request(ctx, "x", model.TierMicro)
	c.Request(ctx, "x", model.TierDisplay)
	waitState(t, c, "x", model.TierMicro, StateLoaded)
	waitState(t, c, "x", model.TierDisplay, StateLoaded)

	best, ok := c.BestLoaded("x")
	require.True(t, ok)
	assert.Equal(t, model.TierDisplay, best.Tier)
}

func TestMicroDerivedFromThumb(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.fail("x", model.TierMicro, blobstore.ErrNoLocator)
	f.set("x", model.TierThumb, pngBytes(t, 400, 300))
	c := New(Config{Fetcher: f})

	c.Request(ctx, "x", model.TierMicro)
	waitState(t, c, "x", model.TierMicro, StateLoaded)

	h, ok := c.Request(ctx, "x", model.TierMicro)
	require.True(t, ok)
	b := h.Image.Bounds()
	assert.LessOrEqual(t, b.Dx(), DefaultMicroEdge)
	assert.LessOrEqual(t, b.Dy(), DefaultMicroEdge)
}

func TestUnknownTierNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	c := New(Config{Fetcher: f})

	_, ok := c.Request(ctx, "x", model.TierUnknown)
	assert.False(t, ok)
	_, ok = c.Request(ctx, "x", model.Tier(99))
	assert.False(t, ok)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, f.callCount("x", model.TierUnknown))
}

func TestLateJoinerNeverRefetchesSettledEntry(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierThumb, pngBytes(t, 6, 4))
	c := New(Config{Fetcher: f})

	c.Request(ctx, "x", model.TierThumb)
	waitState(t, c, "x", model.TierThumb, StateLoaded)
	require.Equal(t, 1, f.callCount("x", model.TierThumb))

	// A joiner that observed pending can reach the flight group only after
	// the original fetch committed and the group forgot the key. It must
	// serve the cached image, not fetch again.
	f.fail("x", model.TierThumb, errors.New("origin gone"))
	delivered := make(chan Handle, 1)
	c.await(ctx, "x", model.TierThumb, nil, func(h Handle) {
		delivered <- h
	})

	select {
	case h := <-delivered:
		assert.True(t, h.Valid())
		assert.Equal(t, 6, h.Image.Bounds().Dx())
	case <-time.After(2 * time.Second):
		t.Fatal("cached image never delivered")
	}
	assert.Equal(t, 1, f.callCount("x", model.TierThumb))
	assert.Equal(t, StateLoaded, c.State("x", model.TierThumb))
}

func TestLateJoinerOnFailedEntryStaysSilent(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.fail("x", model.TierThumb, errors.New("origin gone"))
	c := New(Config{Fetcher: f})

	c.Request(ctx, "x", model.TierThumb)
	waitState(t, c, "x", model.TierThumb, StateFailed)
	require.Equal(t, 1, f.callCount("x", model.TierThumb))

	called := atomic.Int64{}
	c.await(ctx, "x", model.TierThumb, nil, func(Handle) {
		called.Add(1)
	})
	assert.Equal(t, int64(0), called.Load())
	assert.Equal(t, 1, f.callCount("x", model.TierThumb))
	assert.Equal(t, StateFailed, c.State("x", model.TierThumb))
}

func TestCommitNeverDowngradesLoadedEntry(t *testing.T) {
	ctx := context.Background()
	f := newFakeFetcher()
	f.set("x", model.TierThumb, pngBytes(t, 5, 5))
	c := New(Config{Fetcher: f})

	c.Request(ctx, "x", model.TierThumb)
	waitState(t, c, "x", model.TierThumb, StateLoaded)

	c.commit("x", model.TierThumb, nil, errors.New("late failure"))
	assert.Equal(t, StateLoaded, c.State("x", model.TierThumb))

	h, ok := c.BestLoaded("x")
	require.True(t, ok)
	assert.Equal(t, 5, h.Image.Bounds().Dx())
}
