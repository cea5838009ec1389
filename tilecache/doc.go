// Package tilecache implements the tiered, progressively-loading image
// cache: per-(item, tier) entries with explicit load states, deduplicated
// background fetches, and stale-result protection.
//
// Tiers form a ladder (micro < thumb < display < full). Grid tiles request
// thumbs only near the viewport; a focused item displays its best loaded
// rung immediately and climbs the ladder asynchronously; zooming past a
// threshold promotes straight to full. Failures degrade silently to the
// last good tier — no error ever crosses the cache boundary on the browse
// path.
//
// Concurrency model: the fetch path is the engine's only asynchronous work.
// Completions commit under the cache mutex; delivery to visible state is
// guarded by the caller's freshness Token, so a completion for an item the
// user has navigated away from never overwrites a newer tile.
package tilecache
