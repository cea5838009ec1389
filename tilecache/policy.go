package tilecache

import (
	"context"
	"time"

	"github.com/fkoehler/ansel/layout"
	"github.com/fkoehler/ansel/model"
)

const (
	// DefaultProximityPad is how far beyond the viewport, in pixels, grid
	// tiles are considered close enough to fetch their thumb tier.
	DefaultProximityPad = 200.0

	// DefaultZoomThreshold is the magnification above which the full tier
	// is requested eagerly.
	DefaultZoomThreshold = 2.0

	// DefaultCrossfade is the opacity fade shells apply when a higher tier
	// replaces a lower one, instead of a hard swap.
	DefaultCrossfade = 180 * time.Millisecond

	// DefaultMicroEdge is the bounding edge of derived micro tiles.
	DefaultMicroEdge = 48
)

// ProximityPolicy decides which grid tiles are close enough to the viewport
// to deserve a thumb fetch. Off-screen tiles outside the pad are never
// fetched.
type ProximityPolicy struct {
	// Pad extends the viewport on both ends. Zero uses DefaultProximityPad;
	// negative disables the pad.
	Pad float64
}

func (p ProximityPolicy) pad() float64 {
	if p.Pad == 0 {
		return DefaultProximityPad
	}
	if p.Pad < 0 {
		return 0
	}
	return p.Pad
}

// Near returns, in sequence order, the ids of tiles whose row intersects
// the padded viewport [viewTop-pad, viewTop+viewHeight+pad).
func (p ProximityPolicy) Near(l layout.Layout, viewTop, viewHeight float64) []model.ItemID {
	if viewHeight <= 0 {
		return nil
	}
	lo := viewTop - p.pad()
	hi := viewTop + viewHeight + p.pad()

	var ids []model.ItemID
	for _, row := range l.Rows {
		if row.Y+row.Height < lo {
			continue
		}
		if row.Y > hi {
			break
		}
		for _, tile := range row.Tiles {
			ids = append(ids, tile.ID)
		}
	}
	return ids
}

// RequestNear issues thumb requests for every tile the proximity policy
// considers relevant. Already loaded or failed entries are left alone.
func (c *Cache) RequestNear(ctx context.Context, p ProximityPolicy, l layout.Layout, viewTop, viewHeight float64, token Token, onReady func(model.ItemID, Handle)) {
	for _, id := range p.Near(l, viewTop, viewHeight) {
		var deliver func(Handle)
		if onReady != nil {
			deliver = func(h Handle) { onReady(id, h) }
		}
		c.RequestFor(ctx, id, model.TierThumb, token, deliver)
	}
}

// PromoteFocused implements the progressive policy for a focused item:
// return the best already-loaded handle for immediate display (invalid
// handle means placeholder), and asynchronously request the next rung up.
// On arrival the shell cross-fades over Crossfade().
func (c *Cache) PromoteFocused(ctx context.Context, id model.ItemID, token Token, onReady func(Handle)) Handle {
	best, ok := c.BestLoaded(id)

	next := model.TierMicro
	if ok {
		var more bool
		next, more = best.Tier.Next()
		if !more {
			return best // already at the top of the ladder
		}
	}
	c.RequestFor(ctx, id, next, token, onReady)
	return best
}

// PromoteZoomed eagerly requests the full tier once magnification crosses
// the zoom threshold, regardless of proximity. Below the threshold it does
// nothing.
func (c *Cache) PromoteZoomed(ctx context.Context, id model.ItemID, magnification float64, token Token, onReady func(Handle)) {
	if magnification < c.zoomThreshold {
		return
	}
	c.RequestFor(ctx, id, model.TierFull, token, onReady)
}
