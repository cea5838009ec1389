package ansel

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fkoehler/ansel/blobstore"
	"github.com/fkoehler/ansel/config"
	"github.com/fkoehler/ansel/facet"
	"github.com/fkoehler/ansel/layout"
	"github.com/fkoehler/ansel/model"
	"github.com/fkoehler/ansel/nav"
	"github.com/fkoehler/ansel/neighbor"
	"github.com/fkoehler/ansel/resource"
	"github.com/fkoehler/ansel/snapshot"
	"github.com/fkoehler/ansel/tilecache"
)

// Engine ties the browsing mechanisms together over one immutable
// collection snapshot: faceted filtering, justified layout, the tiered
// tile cache, and navigation. All methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	tuning config.Tuning

	snap    []model.Item // snapshot order, never changes after New
	base    []model.Item // snap re-sorted by the active sort key
	sortKey SortKey
	index   *facet.Index
	nav     *nav.Controller

	cache     *tilecache.Cache
	policy    tilecache.ProximityPolicy
	neighbors *neighbor.Graph

	filtered    []model.Item
	filteredSet map[model.ItemID]struct{}

	logger  *Logger
	metrics MetricsCollector
}

// New creates an Engine over a collection snapshot.
//
// Without WithFetcher or WithStore, tile operations report nothing loaded;
// filtering, layout, and navigation still work, which is what headless
// tests want.
func New(coll *snapshot.Collection, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	if err := o.tuning.Validate(); err != nil {
		return nil, err
	}

	var items []model.Item
	if coll != nil {
		items = coll.Items()
	}
	snap := make([]model.Item, len(items))
	copy(snap, items)
	base := make([]model.Item, len(snap))
	copy(base, snap)
	sortItems(base, o.sortKey)

	index := facet.New(o.registry)
	index.Build(base)

	rc := o.resources
	if rc == nil {
		rc = resource.NewController(resource.Config{
			MaxFetchWorkers:  int64(o.tuning.FetchWorkers),
			FetchBytesPerSec: o.tuning.BytesPerSec,
		})
	}

	fetcher := o.fetcher
	if fetcher == nil && o.store != nil {
		fetcher = blobstore.NewFetcher(o.store, blobstore.NewItemLocator(base), rc)
	}

	var cache *tilecache.Cache
	if fetcher != nil {
		cache = tilecache.New(tilecache.Config{
			Fetcher:       fetcher,
			Resources:     rc,
			ZoomThreshold: o.tuning.ZoomLevel,
			Crossfade:     o.tuning.Crossfade(),
			MicroEdge:     o.tuning.MicroEdge,
			Logger:        o.logger.Logger,
			Metrics:       o.metricsCollector,
		})
	}

	e := &Engine{
		tuning:    o.tuning,
		snap:      snap,
		base:      base,
		sortKey:   o.sortKey,
		index:     index,
		nav:       nav.New(o.sink),
		cache:     cache,
		policy:    tilecache.ProximityPolicy{Pad: o.tuning.ProximityPad},
		neighbors: o.neighbors,
		logger:    o.logger,
		metrics:   o.metricsCollector,
	}
	e.refreshLocked()
	return e, nil
}

// Open loads a snapshot file and creates an Engine over it.
func Open(ctx context.Context, path string, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	coll, err := snapshot.LoadFile(ctx, path)
	o.logger.LogSnapshot(ctx, path, collLen(coll), err)
	if err != nil {
		return nil, err
	}
	return New(coll, optFns...)
}

func collLen(c *snapshot.Collection) int {
	if c == nil {
		return 0
	}
	return c.Len()
}

// Tuning returns the engine tuning in effect.
func (e *Engine) Tuning() config.Tuning { return e.tuning }

// SortKey returns the active sort key.
func (e *Engine) SortKey() SortKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortKey
}

// SetSortKey re-orders the base sequence by key and recomputes the filtered
// sequence over it. Re-sorting always starts from snapshot order, so the
// result is independent of previously active keys; focus survives when the
// focused item is still in the sequence.
func (e *Engine) SetSortKey(key SortKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !key.Valid() {
		return &ErrInvalidSortKey{Key: key}
	}
	if key == e.sortKey {
		return nil
	}
	e.sortKey = key

	base := make([]model.Item, len(e.snap))
	copy(base, e.snap)
	sortItems(base, key)
	e.base = base

	// Postings are keyed by position in the base order and must follow it.
	e.index.Build(e.base)
	e.refreshLocked()
	return nil
}

// refreshLocked recomputes the filtered sequence and hands it to the
// navigation controller. Callers must hold e.mu (New is single-threaded).
func (e *Engine) refreshLocked() {
	start := time.Now()

	e.filtered = e.index.FilteredItems(e.base)
	e.filteredSet = make(map[model.ItemID]struct{}, len(e.filtered))
	ids := make([]model.ItemID, len(e.filtered))
	for i, it := range e.filtered {
		ids[i] = it.ID
		e.filteredSet[it.ID] = struct{}{}
	}
	e.nav.SetSequence(ids)

	e.metrics.RecordFilter(time.Since(start), len(e.filtered))
}

// ToggleFilter flips value's membership in dim's selection and recomputes
// the filtered sequence.
func (e *Engine) ToggleFilter(ctx context.Context, dim, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.index.Registry().Lookup(dim); !ok {
		return &ErrUnknownDimension{Key: dim}
	}
	e.index.Toggle(dim, value)
	e.refreshLocked()
	e.logger.LogFilter(ctx, dim, value, len(e.filtered))
	return nil
}

// SetFilterMode switches dim between union and intersection combination.
// The selection is kept; only how its values combine changes.
func (e *Engine) SetFilterMode(ctx context.Context, dim string, m facet.Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.index.Registry().Lookup(dim); !ok {
		return &ErrUnknownDimension{Key: dim}
	}
	e.index.SetMode(dim, m)
	e.refreshLocked()
	return nil
}

// FilterMode returns dim's combination mode.
func (e *Engine) FilterMode(dim string) facet.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.State().Mode(dim)
}

// FilterSelection returns the selected values for dim, sorted.
func (e *Engine) FilterSelection(dim string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.State().Selection(dim)
}

// ResetFilters clears every selection, restoring the full sequence.
func (e *Engine) ResetFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.index.Reset()
	e.refreshLocked()
}

// FilteredItems returns the current filtered sequence in base order.
func (e *Engine) FilteredItems() []model.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Item, len(e.filtered))
	copy(out, e.filtered)
	return out
}

// FilteredCount returns the size of the current filtered sequence.
func (e *Engine) FilteredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.filtered)
}

// GlobalFacet returns dim's value counts over the whole collection,
// independent of any active filter.
func (e *Engine) GlobalFacet(dim string) ([]facet.Option, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.index.Registry().Lookup(dim); !ok {
		return nil, &ErrUnknownDimension{Key: dim}
	}
	return e.index.GlobalCounts(dim, e.base), nil
}

// ContextFacet returns dim's value counts over the current filtered
// sequence.
func (e *Engine) ContextFacet(dim string) ([]facet.Option, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.index.Registry().Lookup(dim); !ok {
		return nil, &ErrUnknownDimension{Key: dim}
	}
	return e.index.ContextCounts(dim, e.base), nil
}

// Layout computes the justified grid for the current filtered sequence at
// the given container width.
func (e *Engine) Layout(ctx context.Context, width float64) layout.Layout {
	e.mu.Lock()
	items := e.filtered
	e.mu.Unlock()

	start := time.Now()
	l := layout.Compute(items, layout.Params{
		RowHeight: e.tuning.RowHeight,
		Width:     width,
		Gap:       e.tuning.Gap,
	})
	e.metrics.RecordLayout(len(items), time.Since(start))
	e.logger.LogLayout(ctx, len(items), width, len(l.Rows))
	return l
}

// visibleToken keeps a fetch result deliverable only while the item is
// still part of the filtered sequence.
func (e *Engine) visibleToken() tilecache.Token {
	return func(id model.ItemID) bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		_, ok := e.filteredSet[id]
		return ok
	}
}

// focusToken keeps a fetch result deliverable only while the item is still
// the focused one.
func (e *Engine) focusToken() tilecache.Token {
	return func(id model.ItemID) bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.nav.Current() == id
	}
}

// RequestTile returns the tile immediately when loaded, otherwise starts or
// joins a fetch and reports readiness through onReady. Results arriving for
// items filtered out in the meantime are cached but not delivered.
func (e *Engine) RequestTile(ctx context.Context, id model.ItemID, tier model.Tier, onReady func(tilecache.Handle)) (tilecache.Handle, bool) {
	if e.cache == nil {
		return tilecache.Handle{}, false
	}
	return e.cache.RequestFor(ctx, id, tier, e.visibleToken(), onReady)
}

// PrefetchVisible requests thumb tiles for every item whose row intersects
// the viewport expanded by the proximity pad.
func (e *Engine) PrefetchVisible(ctx context.Context, l layout.Layout, viewTop, viewHeight float64, onReady func(model.ItemID, tilecache.Handle)) {
	if e.cache == nil {
		return
	}
	e.cache.RequestNear(ctx, e.policy, l, viewTop, viewHeight, e.visibleToken(), onReady)
}

// BestTile returns the highest loaded tier for id.
func (e *Engine) BestTile(id model.ItemID) (tilecache.Handle, bool) {
	if e.cache == nil {
		return tilecache.Handle{}, false
	}
	return e.cache.BestLoaded(id)
}

// TileState reports the load state of one (item, tier) entry.
func (e *Engine) TileState(id model.ItemID, tier model.Tier) tilecache.LoadState {
	if e.cache == nil {
		return tilecache.StateUnrequested
	}
	return e.cache.State(id, tier)
}

// Crossfade returns the tile fade duration shells should apply when a
// sharper tier replaces a blurrier one.
func (e *Engine) Crossfade() time.Duration {
	if e.cache == nil {
		return e.tuning.Crossfade()
	}
	return e.cache.Crossfade()
}

// Focus opens id in the focused view. Ids outside the filtered sequence
// return ErrUnknownItem.
func (e *Engine) Focus(id model.ItemID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.filteredSet[id]; !ok {
		return &ErrUnknownItem{ID: id}
	}
	e.nav.SelectItem(id)
	return nil
}

// Dismiss leaves the focused view.
func (e *Engine) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.Dismiss()
}

// Next moves focus forward along the filtered sequence, clamped at the end.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.MoveNext()
}

// Previous moves focus backward, clamped at the start.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.MovePrevious()
}

// Current returns the focused id, or "" while browsing.
func (e *Engine) Current() model.ItemID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Current()
}

// Mode returns the presentation state.
func (e *Engine) Mode() nav.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Mode()
}

// FocusedTile progressively sharpens the focused item: it returns the best
// loaded tier now and requests the next rung of the ladder, delivering it
// through onReady unless focus has moved on.
func (e *Engine) FocusedTile(ctx context.Context, onReady func(tilecache.Handle)) (tilecache.Handle, error) {
	e.mu.Lock()
	id := e.nav.Current()
	e.mu.Unlock()
	if id == "" {
		return tilecache.Handle{}, ErrNotFocused
	}
	if e.cache == nil {
		return tilecache.Handle{}, nil
	}
	return e.cache.PromoteFocused(ctx, id, e.focusToken(), onReady), nil
}

// Zoom requests the full-resolution tier for the focused item once
// magnification crosses the configured threshold.
func (e *Engine) Zoom(ctx context.Context, magnification float64, onReady func(tilecache.Handle)) error {
	e.mu.Lock()
	id := e.nav.Current()
	e.mu.Unlock()
	if id == "" {
		return ErrNotFocused
	}
	if e.cache == nil {
		return nil
	}
	e.cache.PromoteZoomed(ctx, id, magnification, e.focusToken(), onReady)
	return nil
}

// Drift jumps focus to id, recording the departure point in the
// exploration history. Ids outside the filtered sequence return
// ErrUnknownItem.
func (e *Engine) Drift(ctx context.Context, id model.ItemID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.filteredSet[id]; !ok {
		return &ErrUnknownItem{ID: id}
	}
	e.nav.NavigateTo(id)
	e.logger.LogNavigate(ctx, id, len(e.nav.History()))
	return nil
}

// Back retraces the most recent drift. A no-op with an empty history.
func (e *Engine) Back() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.Back()
}

// History returns the drift history, oldest first.
func (e *Engine) History() []model.ItemID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.History()
}

// Suggest returns drift candidates for the focused item: its precomputed
// neighbors that are still in the filtered sequence. Nil without a focus or
// without a neighbor graph.
func (e *Engine) Suggest() []model.ItemID {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nav.Current()
	if id == "" {
		return nil
	}
	var out []model.ItemID
	for _, n := range e.neighbors.Neighbors(id) {
		if _, ok := e.filteredSet[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// EnterSelectMode leaves any focus and arms multi-select.
func (e *Engine) EnterSelectMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.EnterSelectMode()
}

// SelectModeActive reports whether multi-select is armed.
func (e *Engine) SelectModeActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.SelectModeActive()
}

// ToggleSelected flips id's membership in the multi-select set.
func (e *Engine) ToggleSelected(id model.ItemID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.ToggleSelected(id)
}

// SelectAll selects the entire filtered sequence, never the full
// collection.
func (e *Engine) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.SelectAll()
}

// ClearSelection empties the multi-select set.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nav.ClearSelection()
}

// Selected returns the multi-select set in sequence order.
func (e *Engine) Selected() []model.ItemID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Selected()
}

// ApplyStatus emits one status-change intent per selected item to the
// mutation sink. The engine never rewrites collection data itself.
func (e *Engine) ApplyStatus(ctx context.Context, status model.Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !status.Valid() {
		return &ErrInvalidStatus{Status: status}
	}
	selected := e.nav.Selected()
	if len(selected) == 0 {
		return ErrEmptySelection
	}
	e.nav.ApplyStatus(status)
	e.logger.LogMutation(ctx, "status", len(selected))
	return nil
}

// ApplyTag emits one tag-edit intent per selected item.
func (e *Engine) ApplyTag(ctx context.Context, tag string, added bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(tag) == "" {
		return ErrEmptyTag
	}
	selected := e.nav.Selected()
	if len(selected) == 0 {
		return ErrEmptySelection
	}
	e.nav.ApplyTag(tag, added)
	e.logger.LogMutation(ctx, "tag", len(selected))
	return nil
}

// ResolveLocation emits a location accept/reject intent for the focused
// item.
func (e *Engine) ResolveLocation(ctx context.Context, accepted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.nav.Mode() != nav.ModeFocused {
		return ErrNotFocused
	}
	e.nav.ResolveLocation(accepted)
	e.logger.LogMutation(ctx, "location", 1)
	return nil
}
