package tilecache

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fkoehler/ansel/blobstore"
	"github.com/fkoehler/ansel/model"
	"github.com/fkoehler/ansel/resource"
)

// errFetchFailed marks a failed entry inside the flight group; it never
// crosses the cache boundary.
var errFetchFailed = errors.New("tile fetch failed")

// LoadState is the lifecycle of one (item, tier) cache entry.
type LoadState uint8

const (
	StateUnrequested LoadState = iota
	StatePending
	StateLoaded
	StateFailed
)

// String returns the stable name of the state.
func (s LoadState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unrequested"
	}
}

// Handle is a decoded image at a known tier.
type Handle struct {
	Image image.Image
	Tier  model.Tier
}

// Valid reports whether the handle carries an image.
func (h Handle) Valid() bool { return h.Image != nil }

// Fetcher resolves raw image bytes for (item, tier). blobstore.Fetcher is
// the standard implementation; tests substitute their own.
type Fetcher interface {
	Fetch(ctx context.Context, id model.ItemID, tier model.Tier) ([]byte, error)
}

// Token is the stale-result guard: a completion is delivered to its caller
// only if the token still reports the item as relevant at commit time.
// A nil Token is always fresh. The cache entry itself is committed either
// way; staleness only suppresses the visible-state callback.
type Token func(model.ItemID) bool

// Metrics receives cache observations. The root package's MetricsCollector
// satisfies it.
type Metrics interface {
	RecordTileFetch(tier model.Tier, duration time.Duration, err error)
	RecordTileHit()
	RecordTileMiss()
	RecordStaleDrop()
}

type noopMetrics struct{}

func (noopMetrics) RecordTileFetch(model.Tier, time.Duration, error) {}
func (noopMetrics) RecordTileHit()                                   {}
func (noopMetrics) RecordTileMiss()                                  {}
func (noopMetrics) RecordStaleDrop()                                 {}

// Config configures a Cache.
type Config struct {
	// Fetcher supplies raw bytes per (item, tier). Required.
	Fetcher Fetcher

	// Resources bounds concurrent fetches; nil means unbounded.
	Resources *resource.Controller

	// ZoomThreshold is the magnification above which PromoteZoomed requests
	// the full tier. Defaults to DefaultZoomThreshold.
	ZoomThreshold float64

	// Crossfade is the tile opacity fade the shells should apply when a
	// higher tier arrives. Defaults to DefaultCrossfade.
	Crossfade time.Duration

	// MicroEdge is the bounding edge, in pixels, of micro tiles derived
	// from thumb bytes when the snapshot has no micro locator.
	// Defaults to DefaultMicroEdge.
	MicroEdge int

	Logger  *slog.Logger
	Metrics Metrics
}

type key struct {
	id   model.ItemID
	tier model.Tier
}

type entry struct {
	state LoadState
	img   image.Image
}

// Cache resolves and caches per-item image bytes at increasing fidelity
// tiers. Entries live for the process session; the UI's access pattern is
// the only bound.
//
// All synchronous methods are safe for concurrent use, though the intended
// pattern is single-writer: the shell's event loop calls in, and only fetch
// completions run concurrently.
type Cache struct {
	mu      sync.Mutex
	entries map[key]*entry

	group   singleflight.Group
	fetcher Fetcher
	rc      *resource.Controller

	zoomThreshold float64
	crossfade     time.Duration
	microEdge     int

	logger  *slog.Logger
	metrics Metrics
}

// New creates a Cache. The fetcher is required; everything else defaults.
func New(cfg Config) *Cache {
	if cfg.ZoomThreshold <= 0 {
		cfg.ZoomThreshold = DefaultZoomThreshold
	}
	if cfg.Crossfade <= 0 {
		cfg.Crossfade = DefaultCrossfade
	}
	if cfg.MicroEdge <= 0 {
		cfg.MicroEdge = DefaultMicroEdge
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	return &Cache{
		entries:       make(map[key]*entry),
		fetcher:       cfg.Fetcher,
		rc:            cfg.Resources,
		zoomThreshold: cfg.ZoomThreshold,
		crossfade:     cfg.Crossfade,
		microEdge:     cfg.MicroEdge,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}
}

// Crossfade returns the fade duration shells should apply on tier arrival.
func (c *Cache) Crossfade() time.Duration { return c.crossfade }

// State returns the load state of the (id, tier) entry without side effects.
func (c *Cache) State(id model.ItemID, tier model.Tier) LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key{id, tier}]; ok {
		return e.state
	}
	return StateUnrequested
}

// Request returns the cached handle immediately when loaded. Otherwise it
// transitions the entry to pending, issues (or attaches to) the single
// background fetch for this (id, tier), and reports false. Failed entries
// stay failed for the session; unknown tiers are a no-op.
func (c *Cache) Request(ctx context.Context, id model.ItemID, tier model.Tier) (Handle, bool) {
	return c.RequestFor(ctx, id, tier, nil, nil)
}

// RequestFor is Request with a freshness token and a delivery callback.
// onReady fires off the event loop once the fetch commits, and only when
// token still reports id as relevant; the cache entry is committed
// regardless, so a later Request is a hit.
func (c *Cache) RequestFor(ctx context.Context, id model.ItemID, tier model.Tier, token Token, onReady func(Handle)) (Handle, bool) {
	if id == "" || !tier.Valid() || c.fetcher == nil {
		return Handle{}, false
	}

	k := key{id, tier}
	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{}
		c.entries[k] = e
	}

	switch e.state {
	case StateLoaded:
		img := e.img
		c.mu.Unlock()
		c.metrics.RecordTileHit()
		return Handle{Image: img, Tier: tier}, true

	case StateFailed:
		c.mu.Unlock()
		return Handle{}, false

	case StatePending:
		c.mu.Unlock()
		c.metrics.RecordTileMiss()
		if onReady != nil {
			// Attach to the in-flight fetch rather than issuing another.
			go c.await(ctx, id, tier, token, onReady)
		}
		return Handle{}, false

	default: // StateUnrequested
		e.state = StatePending
		c.mu.Unlock()
		c.metrics.RecordTileMiss()
		go c.await(ctx, id, tier, token, onReady)
		return Handle{}, false
	}
}

// await joins the deduplicated fetch for (id, tier) and delivers the result
// through the stale-result guard.
func (c *Cache) await(ctx context.Context, id model.ItemID, tier model.Tier, token Token, onReady func(Handle)) {
	// In-flight fetches are never canceled; a stale completion simply
	// becomes a no-op at delivery.
	ctx = context.WithoutCancel(ctx)

	v, err, _ := c.group.Do(string(id)+"\x00"+tier.String(), func() (any, error) {
		// The entry may have settled between the state check in RequestFor
		// and joining the flight group here; a settled entry must not fetch
		// again.
		if img, settled, serr := c.settled(id, tier); settled {
			return img, serr
		}
		img, ferr := c.load(ctx, id, tier)
		c.commit(id, tier, img, ferr)
		return img, ferr
	})
	if err != nil {
		return
	}

	if token != nil && !token(id) {
		c.metrics.RecordStaleDrop()
		c.logger.Debug("stale tile completion dropped", "item", id, "tier", tier.String())
		return
	}
	if onReady != nil {
		onReady(Handle{Image: v.(image.Image), Tier: tier})
	}
}

func (c *Cache) load(ctx context.Context, id model.ItemID, tier model.Tier) (image.Image, error) {
	if err := c.rc.AcquireFetch(ctx); err != nil {
		return nil, err
	}
	defer c.rc.ReleaseFetch()

	start := time.Now()
	img, err := c.fetchDecoded(ctx, id, tier)
	c.metrics.RecordTileFetch(tier, time.Since(start), err)
	return img, err
}

func (c *Cache) fetchDecoded(ctx context.Context, id model.ItemID, tier model.Tier) (image.Image, error) {
	data, err := c.fetcher.Fetch(ctx, id, tier)
	if err != nil {
		if tier == model.TierMicro && errors.Is(err, blobstore.ErrNoLocator) {
			return c.deriveMicro(ctx, id)
		}
		return nil, err
	}
	return Decode(data)
}

// deriveMicro downscales thumb bytes when the snapshot carries no micro
// locator, so the bottom rung of the ladder always exists where a thumb does.
func (c *Cache) deriveMicro(ctx context.Context, id model.ItemID) (image.Image, error) {
	data, err := c.fetcher.Fetch(ctx, id, model.TierThumb)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Downscale(img, c.microEdge), nil
}

// settled reports a terminal entry state: the loaded image, or for a failed
// entry a non-nil error.
func (c *Cache) settled(id model.ItemID, tier model.Tier) (image.Image, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key{id, tier}]
	if !ok {
		return nil, false, nil
	}
	switch e.state {
	case StateLoaded:
		return e.img, true, nil
	case StateFailed:
		return nil, true, errFetchFailed
	}
	return nil, false, nil
}

func (c *Cache) commit(id model.ItemID, tier model.Tier, img image.Image, err error) {
	c.mu.Lock()
	e, ok := c.entries[key{id, tier}]
	if !ok {
		e = &entry{}
		c.entries[key{id, tier}] = e
	}
	if e.state == StateLoaded {
		// Loaded is terminal; a late completion never downgrades it.
		c.mu.Unlock()
		return
	}
	if err != nil {
		e.state = StateFailed
		c.mu.Unlock()
		c.logger.Debug("tile fetch failed", "item", id, "tier", tier.String(), "err", err)
		return
	}
	e.state = StateLoaded
	e.img = img
	c.mu.Unlock()
	c.logger.Debug("tile committed", "item", id, "tier", tier.String())
}

// BestLoaded returns the highest loaded rung for id, walking the fallback
// chain full -> display -> thumb -> micro. ok is false when nothing is
// loaded (the shell shows its placeholder).
func (c *Cache) BestLoaded(id model.ItemID) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ladder := model.Ladder()
	for i := len(ladder) - 1; i >= 0; i-- {
		if e, ok := c.entries[key{id, ladder[i]}]; ok && e.state == StateLoaded {
			return Handle{Image: e.img, Tier: ladder[i]}, true
		}
	}
	return Handle{}, false
}
