package layout_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkoehler/ansel/layout"
	"github.com/fkoehler/ansel/testutil"
)

// Every non-final row must span the container width exactly, and every item
// must appear exactly once, for arbitrary collections.
func TestComputeInvariantsOverRandomItems(t *testing.T) {
	rng := testutil.NewRNG(42)
	items := testutil.Items(rng, 500)
	p := layout.Params{RowHeight: 220, Width: 1180, Gap: 4}

	l := layout.Compute(items, p)
	require.NotEmpty(t, l.Rows)
	assert.Len(t, l.Tiles(), len(items))

	seen := map[string]bool{}
	for i, row := range l.Rows {
		var w float64
		for _, tile := range row.Tiles {
			require.False(t, seen[string(tile.ID)], "item laid out twice: %s", tile.ID)
			seen[string(tile.ID)] = true
			w += tile.W
		}
		w += float64(len(row.Tiles)-1) * p.Gap

		if i < len(l.Rows)-1 {
			assert.InDelta(t, p.Width, w, 1.0, "row %d width", i)
		} else {
			assert.LessOrEqual(t, w, p.Width+1.0, "final row overflows")
			assert.LessOrEqual(t, row.Height, p.RowHeight+1e-9, "final row stretched")
		}
	}
}

func TestComputeIsDeterministicOverRandomItems(t *testing.T) {
	rng := testutil.NewRNG(7)
	items := testutil.Items(rng, 200)
	p := layout.Params{RowHeight: 180, Width: 900, Gap: 6}

	a := layout.Compute(items, p)
	b := layout.Compute(items, p)
	require.Equal(t, len(a.Rows), len(b.Rows))
	for i := range a.Rows {
		assert.Equal(t, a.Rows[i], b.Rows[i])
	}

	// Total height is rows plus gaps, with no trailing gap.
	var want float64
	for i, row := range a.Rows {
		want += row.Height
		if i < len(a.Rows)-1 {
			want += p.Gap
		}
	}
	assert.True(t, math.Abs(a.Height-want) < 1e-9)
}
