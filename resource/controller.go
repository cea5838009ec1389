package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds limits for background fetch work.
type Config struct {
	// MaxFetchWorkers is the maximum number of concurrent background
	// fetches. If 0, defaults to 4.
	MaxFetchWorkers int64

	// FetchBytesPerSec is the maximum fetch throughput.
	// If 0, unlimited.
	FetchBytesPerSec int64
}

// Controller governs the engine's only asynchronous path: background image
// fetches. Everything else in the engine runs synchronously on the shell's
// event loop and needs no governance.
type Controller struct {
	cfg Config

	fetchSem    *semaphore.Weighted
	byteLimiter *rate.Limiter

	inFlight atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxFetchWorkers <= 0 {
		cfg.MaxFetchWorkers = 4
	}

	c := &Controller{
		cfg:      cfg,
		fetchSem: semaphore.NewWeighted(cfg.MaxFetchWorkers),
	}

	if cfg.FetchBytesPerSec > 0 {
		c.byteLimiter = rate.NewLimiter(rate.Limit(cfg.FetchBytesPerSec), int(cfg.FetchBytesPerSec))
	}

	return c
}

// AcquireFetch reserves a fetch worker slot, blocking until one is available
// or ctx is canceled. A nil controller imposes no limit.
func (c *Controller) AcquireFetch(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.fetchSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireFetch reserves a fetch worker slot without blocking.
func (c *Controller) TryAcquireFetch() bool {
	if c == nil {
		return true
	}
	if !c.fetchSem.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseFetch releases a fetch worker slot.
func (c *Controller) ReleaseFetch() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.fetchSem.Release(1)
}

// ThrottleBytes waits until the byte-rate limit allows the given read size.
func (c *Controller) ThrottleBytes(ctx context.Context, bytes int) error {
	if c == nil || c.byteLimiter == nil || bytes <= 0 {
		return nil
	}
	// WaitN cannot exceed the burst size; clamp oversized reads.
	if burst := c.byteLimiter.Burst(); bytes > burst {
		bytes = burst
	}
	return c.byteLimiter.WaitN(ctx, bytes)
}

// InFlight returns the number of currently running fetches.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}
