package facet

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/fkoehler/ansel/model"
)

// Option is one facet value together with its occurrence count. Whether the
// count is global or contextual depends on which operation produced it; the
// two are deliberately separate (GlobalCounts vs ContextCounts).
type Option struct {
	Value string
	Count int
}

// Index evaluates and narrows a collection against a filter State and
// computes facet option counts.
//
// Index is not safe for concurrent use; all calls are expected from the
// shell's event loop.
type Index struct {
	reg   *Registry
	state *State

	// Roaring posting lists: dim -> value -> ordinals within the collection
	// passed to Build. Optional acceleration; the scan path is authoritative.
	postings map[string]map[string]*roaring.Bitmap
	universe int
	built    bool

	// Result of the most recent FilteredItems call, retained so a
	// subsequent count query does not force a second pass.
	lastFiltered []model.Item
	lastValid    bool
}

// New creates an Index over the given dimension registry. A nil registry
// falls back to DefaultRegistry.
func New(reg *Registry) *Index {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Index{
		reg:   reg,
		state: NewState(),
	}
}

// State exposes the current filter state for inspection.
func (ix *Index) State() *State { return ix.state }

// Registry exposes the dimension table.
func (ix *Index) Registry() *Registry { return ix.reg }

// Active reports whether any dimension currently has a selection.
func (ix *Index) Active() bool { return ix.state.Active() }

// Toggle flips membership of value in the selection for dim. Unknown
// dimension keys are a no-op.
func (ix *Index) Toggle(dim, value string) {
	if _, ok := ix.reg.Lookup(dim); !ok {
		return
	}
	ix.state.Toggle(dim, value)
	ix.lastValid = false
}

// SetMode sets the union/intersection mode for dim only. Unknown dimension
// keys are a no-op.
func (ix *Index) SetMode(dim string, m Mode) {
	if _, ok := ix.reg.Lookup(dim); !ok {
		return
	}
	ix.state.SetMode(dim, m)
	ix.lastValid = false
}

// Reset clears every selection and mode override.
func (ix *Index) Reset() {
	ix.state.Reset()
	ix.lastValid = false
}

// Evaluate reports whether item passes the current filter state. Dimensions
// are combined with AND; an inactive state passes everything.
func (ix *Index) Evaluate(item model.Item) bool {
	return ix.evaluate(item, ix.state.ActiveDimensions())
}

func (ix *Index) evaluate(item model.Item, activeDims []string) bool {
	for _, dim := range activeDims {
		d, ok := ix.reg.Lookup(dim)
		if !ok {
			continue
		}
		if !ix.matchDimension(item, d) {
			return false
		}
	}
	return true
}

func (ix *Index) matchDimension(item model.Item, d Dimension) bool {
	values := d.Values(item)
	sel := ix.state.selected[d.Key]

	if !d.Multi {
		// Single-valued: plain membership, mode is irrelevant.
		for _, v := range values {
			if _, ok := sel[v]; ok {
				return true
			}
		}
		return false
	}

	if ix.state.Mode(d.Key) == ModeIntersection {
		// Selection must be a subset of the item's value set.
		if len(values) < len(sel) {
			return false
		}
		have := make(map[string]struct{}, len(values))
		for _, v := range values {
			have[v] = struct{}{}
		}
		for want := range sel {
			if _, ok := have[want]; !ok {
				return false
			}
		}
		return true
	}

	// Union: the item's value set must intersect the selection.
	for _, v := range values {
		if _, ok := sel[v]; ok {
			return true
		}
	}
	return false
}

// FilteredItems returns the ordered subsequence of collection passing the
// current filter state, preserving input order. The result is retained, so
// FilteredCount is free until the state changes.
func (ix *Index) FilteredItems(collection []model.Item) []model.Item {
	if !ix.state.Active() {
		ix.lastFiltered = collection
		ix.lastValid = true
		return collection
	}

	if ix.built && ix.universe == len(collection) {
		ix.lastFiltered = ix.filterBitmap(collection)
		ix.lastValid = true
		return ix.lastFiltered
	}

	activeDims := ix.state.ActiveDimensions()
	out := make([]model.Item, 0, len(collection))
	for _, item := range collection {
		if ix.evaluate(item, activeDims) {
			out = append(out, item)
		}
	}
	ix.lastFiltered = out
	ix.lastValid = true
	return out
}

// FilteredCount returns the size of the most recently computed filtered set.
// ok is false when no FilteredItems result is retained for the current state.
func (ix *Index) FilteredCount() (int, bool) {
	if !ix.lastValid {
		return 0, false
	}
	return len(ix.lastFiltered), true
}

// GlobalCounts counts occurrences of each value of dim across the entire
// collection, ignoring the filter state. Used for collection-wide pills.
// Results are ordered by descending count, then value.
func (ix *Index) GlobalCounts(dim string, collection []model.Item) []Option {
	d, ok := ix.reg.Lookup(dim)
	if !ok {
		return nil
	}

	if ix.built && ix.universe == len(collection) {
		if vm, ok := ix.postings[dim]; ok {
			opts := make([]Option, 0, len(vm))
			for v, bm := range vm {
				opts = append(opts, Option{Value: v, Count: int(bm.GetCardinality())})
			}
			sortOptions(opts)
			return opts
		}
		return nil
	}

	return countValues(d, collection)
}

// ContextCounts counts occurrences of each value of dim within the currently
// filtered set, under the full active state including dim's own selection.
// Used for in-context facet browsing. Results are ordered by descending
// count, then value.
func (ix *Index) ContextCounts(dim string, collection []model.Item) []Option {
	d, ok := ix.reg.Lookup(dim)
	if !ok {
		return nil
	}
	if !ix.lastValid {
		ix.FilteredItems(collection)
	}
	return countValues(d, ix.lastFiltered)
}

func countValues(d Dimension, items []model.Item) []Option {
	counts := make(map[string]int)
	for _, item := range items {
		for _, v := range d.Values(item) {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	opts := make([]Option, 0, len(counts))
	for v, n := range counts {
		opts = append(opts, Option{Value: v, Count: n})
	}
	sortOptions(opts)
	return opts
}

func sortOptions(opts []Option) {
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Count != opts[j].Count {
			return opts[i].Count > opts[j].Count
		}
		return opts[i].Value < opts[j].Value
	})
}

// Build constructs roaring posting lists over the ordinals of collection.
// FilteredItems and GlobalCounts then run as bitmap operations instead of
// scans. The postings describe exactly this ordered collection; call Build
// again (or Invalidate) whenever the collection or its order changes.
func (ix *Index) Build(collection []model.Item) {
	postings := make(map[string]map[string]*roaring.Bitmap)
	for _, key := range ix.reg.Keys() {
		d, _ := ix.reg.Lookup(key)
		vm := make(map[string]*roaring.Bitmap)
		for ord, item := range collection {
			for _, v := range d.Values(item) {
				bm, ok := vm[v]
				if !ok {
					bm = roaring.New()
					vm[v] = bm
				}
				bm.Add(uint32(ord))
			}
		}
		postings[key] = vm
	}
	ix.postings = postings
	ix.universe = len(collection)
	ix.built = true
	ix.lastValid = false
}

// Invalidate drops the posting lists; subsequent calls use the scan path
// until Build runs again.
func (ix *Index) Invalidate() {
	ix.postings = nil
	ix.universe = 0
	ix.built = false
	ix.lastValid = false
}

func (ix *Index) filterBitmap(collection []model.Item) []model.Item {
	n := len(collection)
	acc := roaring.New()
	acc.AddRange(0, uint64(n))

	for _, dim := range ix.state.ActiveDimensions() {
		d, ok := ix.reg.Lookup(dim)
		if !ok {
			continue
		}
		sel := ix.state.Selection(dim)
		vm := ix.postings[dim]

		var dimBM *roaring.Bitmap
		if d.Multi && ix.state.Mode(dim) == ModeIntersection {
			for _, v := range sel {
				bm := vm[v]
				if bm == nil {
					dimBM = roaring.New()
					break
				}
				if dimBM == nil {
					dimBM = bm.Clone()
				} else {
					dimBM.And(bm)
				}
			}
		} else {
			dimBM = roaring.New()
			for _, v := range sel {
				if bm := vm[v]; bm != nil {
					dimBM.Or(bm)
				}
			}
		}
		acc.And(dimBM)
		if acc.IsEmpty() {
			return []model.Item{}
		}
	}

	out := make([]model.Item, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		out = append(out, collection[it.Next()])
	}
	return out
}
