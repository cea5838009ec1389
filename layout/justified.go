// Package layout turns an ordered, filtered item sequence into justified
// (Flickr-style) row/tile geometry for a fixed-width viewport.
//
// The algorithm is greedy row packing: rows accumulate items until scaling
// them to the target height would overflow the container, then the row height
// is recomputed so the row exactly fills the container width. Output is fully
// deterministic for a given input, which the golden layout tests rely on.
package layout

import (
	"github.com/fkoehler/ansel/model"
)

// FallbackAspect is used for items with missing or degenerate geometry.
const FallbackAspect = 1.5

// Params are the inputs of a layout pass.
type Params struct {
	// RowHeight is the target row height in pixels.
	RowHeight float64
	// Width is the container width in pixels.
	Width float64
	// Gap is the spacing between tiles within a row and between rows.
	Gap float64
}

// Tile is the computed geometry for one item.
type Tile struct {
	ID model.ItemID
	X  float64
	Y  float64
	W  float64
	H  float64
}

// Row is one packed row of tiles.
type Row struct {
	Y      float64
	Height float64
	Tiles  []Tile
}

// Layout is the full geometry of a laid-out sequence.
type Layout struct {
	Rows []Row
	// Height is the total scroll extent, including inter-row gaps.
	Height float64
}

// Tiles returns all tiles in sequence order.
func (l Layout) Tiles() []Tile {
	n := 0
	for _, r := range l.Rows {
		n += len(r.Tiles)
	}
	out := make([]Tile, 0, n)
	for _, r := range l.Rows {
		out = append(out, r.Tiles...)
	}
	return out
}

func aspectOf(it model.Item) float64 {
	if a := it.AspectRatio(); a > 0 {
		return a
	}
	return FallbackAspect
}

// Compute packs items into justified rows. A zero-width container or an
// empty sequence yields an empty layout, never an error.
//
// A row closes once the items at target height (plus gaps) reach the
// container width and the row holds at least two items; a single very wide
// tile never closes a row alone. Closed rows are scaled to exactly fill the
// width; the final under-full row is never stretched taller than the target.
func Compute(items []model.Item, p Params) Layout {
	if len(items) == 0 || p.Width <= 0 || p.RowHeight <= 0 {
		return Layout{}
	}

	var (
		rows      []Row
		current   []model.Item
		sumAspect float64
		y         float64
	)

	closeRow := func(height float64) {
		row := Row{Y: y, Height: height, Tiles: make([]Tile, 0, len(current))}
		x := 0.0
		for _, it := range current {
			w := aspectOf(it) * height
			row.Tiles = append(row.Tiles, Tile{ID: it.ID, X: x, Y: y, W: w, H: height})
			x += w + p.Gap
		}
		rows = append(rows, row)
		y += height + p.Gap
		current = current[:0]
		sumAspect = 0
	}

	for _, it := range items {
		current = append(current, it)
		sumAspect += aspectOf(it)

		filled := sumAspect*p.RowHeight + float64(len(current)-1)*p.Gap
		if filled >= p.Width && len(current) >= 2 {
			height := (p.Width - float64(len(current)-1)*p.Gap) / sumAspect
			closeRow(height)
		}
	}

	if len(current) > 0 {
		height := (p.Width - float64(len(current)-1)*p.Gap) / sumAspect
		if height > p.RowHeight {
			height = p.RowHeight
		}
		closeRow(height)
	}

	total := y
	if len(rows) > 0 {
		total -= p.Gap // no trailing gap after the last row
	}
	return Layout{Rows: rows, Height: total}
}
