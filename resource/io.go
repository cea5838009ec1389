package resource

import (
	"context"
	"io"
)

// RateLimitedReader wraps an io.Reader so that reads respect the
// controller's fetch byte-rate limit.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	// The exact read size is unknown up front; throttle on the buffer size,
	// which is the maximum this call can consume.
	if err := r.rc.ThrottleBytes(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
