package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fkoehler/ansel/model"
	"github.com/fkoehler/ansel/resource"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrNoLocator is returned when an item's snapshot carries no resource
// locator for the requested tier.
var ErrNoLocator = errors.New("no locator for tier")

// Store is an abstraction for reading immutable image blobs. Image resources
// are read whole; there is no partial-read contract.
type Store interface {
	// Open opens the blob stored under key for reading.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// BulkStore is implemented by stores that can read a whole object faster
// than streaming it, typically with parallel ranged part downloads.
// Fetchers prefer it for full-tier originals.
type BulkStore interface {
	Store

	// Download reads the entire blob stored under key.
	Download(ctx context.Context, key string) ([]byte, error)
}

// Locator maps (itemID, tier) to a store key.
type Locator interface {
	Locate(id model.ItemID, tier model.Tier) (string, bool)
}

// ItemLocator resolves keys straight off the snapshot items' locator maps.
type ItemLocator struct {
	items map[model.ItemID]model.Item
}

// NewItemLocator builds a locator over a collection snapshot.
func NewItemLocator(items []model.Item) *ItemLocator {
	m := make(map[model.ItemID]model.Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return &ItemLocator{items: m}
}

// Locate implements Locator.
func (l *ItemLocator) Locate(id model.ItemID, tier model.Tier) (string, bool) {
	it, ok := l.items[id]
	if !ok {
		return "", false
	}
	return it.Locator(tier)
}

// Fetcher reads whole image blobs through a Store using a Locator,
// optionally throttled by a resource controller. It is the concrete
// resolver handed to the tile cache.
type Fetcher struct {
	store Store
	loc   Locator
	rc    *resource.Controller
}

// NewFetcher creates a Fetcher. rc may be nil for unthrottled reads.
func NewFetcher(store Store, loc Locator, rc *resource.Controller) *Fetcher {
	return &Fetcher{store: store, loc: loc, rc: rc}
}

// Fetch returns the raw bytes for (id, tier).
//
// A missing locator reports ErrNoLocator; a missing blob reports ErrNotFound.
// Both satisfy errors.Is against their sentinels. Full-tier reads go through
// the store's bulk path when it has one; originals run tens of megabytes and
// benefit from parallel part downloads.
func (f *Fetcher) Fetch(ctx context.Context, id model.ItemID, tier model.Tier) ([]byte, error) {
	key, ok := f.loc.Locate(id, tier)
	if !ok {
		return nil, fmt.Errorf("item %s tier %s: %w", id, tier, ErrNoLocator)
	}

	if bs, ok := f.store.(BulkStore); ok && tier == model.TierFull {
		data, err := bs.Download(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", key, err)
		}
		if f.rc != nil {
			if err := f.rc.ThrottleBytes(ctx, len(data)); err != nil {
				return nil, err
			}
		}
		return data, nil
	}

	rc, err := f.store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if f.rc != nil {
		r = resource.NewRateLimitedReader(ctx, rc, f.rc)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
