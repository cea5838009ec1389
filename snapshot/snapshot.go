// Package snapshot loads the immutable-for-the-session collection snapshot
// emitted by the analysis pipeline.
//
// A snapshot is a JSON array of items, optionally zstd- or lz4-compressed.
// The engine never queries the pipeline mid-session; everything it knows
// about the collection comes from one snapshot load.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fkoehler/ansel/codec"
	"github.com/fkoehler/ansel/model"
)

// Collection is an immutable, ordered collection snapshot with id lookup.
type Collection struct {
	items []model.Item
	index map[model.ItemID]int
}

// New builds a Collection, validating id uniqueness.
func New(items []model.Item) (*Collection, error) {
	index := make(map[model.ItemID]int, len(items))
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("snapshot item %d: missing id", i)
		}
		if prev, ok := index[it.ID]; ok {
			return nil, fmt.Errorf("snapshot item %d: duplicate id %q (first at %d)", i, it.ID, prev)
		}
		index[it.ID] = i
	}
	return &Collection{items: items, index: index}, nil
}

// Items returns the snapshot sequence in pipeline order.
// Callers must treat the slice as read-only.
func (c *Collection) Items() []model.Item { return c.items }

// Item returns the item with the given id.
func (c *Collection) Item(id model.ItemID) (model.Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Item{}, false
	}
	return c.items[i], true
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// Decode parses snapshot bytes with the given codec. Item records decode in
// parallel; order is preserved. A nil codec uses codec.Default.
func Decode(ctx context.Context, data []byte, c codec.Codec) (*Collection, error) {
	if c == nil {
		c = codec.Default
	}

	var raws []json.RawMessage
	if err := c.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("snapshot decode (%s): %w", c.Name(), err)
	}

	items := make([]model.Item, len(raws))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	const chunk = 256
	for start := 0; start < len(raws); start += chunk {
		end := min(start+chunk, len(raws))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := json.Unmarshal(raws[i], &items[i]); err != nil {
					return fmt.Errorf("snapshot item %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(items)
}

// Load reads and decodes a snapshot stream.
func Load(ctx context.Context, r io.Reader, c codec.Codec) (*Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot read: %w", err)
	}
	return Decode(ctx, data, c)
}

// LoadFile reads a snapshot file, picking the codec from the extension:
// .json, .json.zst, .json.lz4.
func LoadFile(ctx context.Context, path string) (*Collection, error) {
	c, err := codecForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot open: %w", err)
	}
	defer f.Close()
	return Load(ctx, f, c)
}

func codecForPath(path string) (codec.Codec, error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		return codec.JSON{}, nil
	case strings.HasSuffix(path, ".json.zst"):
		return codec.Zstd{Inner: codec.JSON{}}, nil
	case strings.HasSuffix(path, ".json.lz4"):
		return codec.LZ4{Inner: codec.JSON{}}, nil
	default:
		return nil, fmt.Errorf("snapshot %s: unrecognized extension", path)
	}
}
