// Package neighbor precomputes the drift links behind graph-style browsing:
// for each item, the k visually closest items by perceptual hash distance
// over the thumb tier. The navigation layer consumes the links; this package
// neither fetches nor ranks beyond hash distance.
package neighbor

import (
	"context"
	"image"
	"runtime"
	"sync"

	"github.com/corona10/goimagehash"
	"golang.org/x/sync/errgroup"

	"github.com/fkoehler/ansel/model"
)

// ImageSource supplies a decoded thumbnail for an item, typically backed by
// the tile cache's loaded thumb entries. ok=false excludes the item from
// the graph.
type ImageSource func(id model.ItemID) (image.Image, bool)

// Graph holds precomputed neighbor links per item.
type Graph struct {
	links map[model.ItemID][]model.ItemID
}

// NewStatic wraps pipeline-precomputed links into a Graph.
func NewStatic(links map[model.ItemID][]model.ItemID) *Graph {
	if links == nil {
		links = make(map[model.ItemID][]model.ItemID)
	}
	return &Graph{links: links}
}

// Neighbors returns the drift links for id, closest first. Unknown ids
// return nil.
func (g *Graph) Neighbors(id model.ItemID) []model.ItemID {
	if g == nil {
		return nil
	}
	return g.links[id]
}

// Len returns the number of items with links.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.links)
}

type hashed struct {
	id   model.ItemID
	hash *goimagehash.ImageHash
}

// Build hashes every item with an available thumbnail and links each to its
// k nearest others. Self-links are excluded; ties keep sequence order.
// Items without an image simply have no links.
func Build(ctx context.Context, items []model.Item, src ImageSource, k int) (*Graph, error) {
	if k <= 0 {
		k = 8
	}

	hashes := make([]*hashed, len(items))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, it := range items {
		g.Go(func() error {
			img, ok := src(it.ID)
			if !ok {
				return nil
			}
			h, err := goimagehash.PerceptionHash(img)
			if err != nil {
				// Hashing problems drop the item from the graph; drift
				// browsing degrades, nothing fails.
				return nil
			}
			mu.Lock()
			hashes[i] = &hashed{id: it.ID, hash: h}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	compact := hashes[:0]
	for _, h := range hashes {
		if h != nil {
			compact = append(compact, h)
		}
	}

	links := make(map[model.ItemID][]model.ItemID, len(compact))
	for i, a := range compact {
		links[a.id] = nearest(compact, i, k)
	}
	return &Graph{links: links}, nil
}

// nearest selects the k smallest-distance peers of compact[i] by stable
// insertion, which keeps ties in sequence order.
func nearest(compact []*hashed, i, k int) []model.ItemID {
	type cand struct {
		id   model.ItemID
		dist int
	}
	best := make([]cand, 0, k)

	for j, b := range compact {
		if j == i {
			continue
		}
		d, err := compact[i].hash.Distance(b.hash)
		if err != nil {
			continue
		}
		pos := len(best)
		for pos > 0 && best[pos-1].dist > d {
			pos--
		}
		if pos >= k {
			continue
		}
		if len(best) < k {
			best = append(best, cand{})
		}
		copy(best[pos+1:], best[pos:])
		best[pos] = cand{id: b.id, dist: d}
	}

	out := make([]model.ItemID, len(best))
	for n, c := range best {
		out[n] = c.id
	}
	return out
}
