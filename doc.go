// Package ansel provides an embeddable browsing engine for large photo
// collections.
//
// Ansel takes an immutable collection snapshot and exposes the mechanics a
// gallery shell needs: faceted filtering with union and intersection
// semantics, justified grid layout, a tiered progressive image cache with
// stale-result protection, and a navigation controller with drift history
// and multi-select curation.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, _ := ansel.Open(ctx, "./collection.json.zst",
//	    ansel.WithStore(store),
//	    ansel.WithSortKey(ansel.SortCaptureTime),
//	)
//
//	_ = eng.ToggleFilter(ctx, "vibe", "moody")
//	l := eng.Layout(ctx, 1200)
//	eng.PrefetchVisible(ctx, l, 0, 800, onTile)
//
// # Filtering
//
// Each facet dimension combines its selected values by union (any match)
// or intersection (all match); dimensions always combine by intersection
// with each other. Filtering narrows a fixed base ordering and never
// reorders it:
//
//	_ = eng.ToggleFilter(ctx, "vibe", "moody")
//	_ = eng.SetFilterMode(ctx, "vibe", facet.ModeIntersection)
//	opts, _ := eng.ContextFacet("camera")
//
// # Tiles
//
// Images load through a four-tier ladder (micro, thumb, display, full).
// Requests are deduplicated, fetches are never cancelled, and a result
// that is no longer relevant when it arrives is cached but not delivered:
//
//	h, ok := eng.RequestTile(ctx, id, model.TierDisplay, onReady)
//	if !ok {
//	    h, _ = eng.BestTile(id) // blurry placeholder while waiting
//	}
//
// # Navigation
//
// Focused browsing moves along the filtered sequence; drift jumps record a
// history that collapses cycles, and multi-select emits curation intents
// to a sink without mutating the collection:
//
//	_ = eng.Focus(id)
//	eng.Next()
//	_ = eng.Drift(ctx, suggestion)
//	eng.Back()
package ansel
