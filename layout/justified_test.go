package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fkoehler/ansel/model"
)

// itemsFromAspects builds a sequence with exact aspect ratios by scaling a
// fixed height of 1000.
func itemsFromAspects(aspects []float64) []model.Item {
	items := make([]model.Item, len(aspects))
	for i, a := range aspects {
		items[i] = model.Item{
			ID:     model.ItemID(string(rune('a' + i))),
			Width:  int(a * 1000),
			Height: 1000,
		}
	}
	return items
}

var goldenParams = Params{RowHeight: 220, Width: 900, Gap: 4}

// The golden scenario: aspect ratios packed at 900px/220px/4px must always
// produce rows of 4, 4 and 1 items with fixed heights.
func TestGoldenScenario(t *testing.T) {
	aspects := []float64{1.0, 1.5, 1.0, 1.78, 0.67, 1.5, 1.0, 1.33, 1.78}
	l := Compute(itemsFromAspects(aspects), goldenParams)

	if len(l.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(l.Rows))
	}
	wantLens := []int{4, 4, 1}
	for i, r := range l.Rows {
		if len(r.Tiles) != wantLens[i] {
			t.Errorf("row %d: %d tiles, want %d", i, len(r.Tiles), wantLens[i])
		}
	}

	// Closed rows scale to exactly fill the width; the final single tile
	// stays at target height.
	approx := func(got, want float64) bool { return math.Abs(got-want) < 0.01 }
	if h := l.Rows[0].Height; !approx(h, 888.0/5.28) {
		t.Errorf("row 0 height = %v, want %v", h, 888.0/5.28)
	}
	if h := l.Rows[1].Height; !approx(h, 888.0/4.5) {
		t.Errorf("row 1 height = %v, want %v", h, 888.0/4.5)
	}
	if h := l.Rows[2].Height; h != 220 {
		t.Errorf("final row height = %v, want 220", h)
	}
	if w := l.Rows[2].Tiles[0].W; !approx(w, 1.78*220) {
		t.Errorf("final tile width = %v, want %v", w, 1.78*220)
	}
}

func TestWidthConservation(t *testing.T) {
	aspects := []float64{1.0, 1.5, 1.0, 1.78, 0.67, 1.5, 1.0, 1.33, 1.78, 0.8, 1.2, 1.6}
	l := Compute(itemsFromAspects(aspects), goldenParams)

	for i, r := range l.Rows[:len(l.Rows)-1] {
		sum := 0.0
		for _, tile := range r.Tiles {
			sum += tile.W
		}
		sum += float64(len(r.Tiles)-1) * goldenParams.Gap
		if math.Abs(sum-goldenParams.Width) > 1 {
			t.Errorf("row %d fills %v px, want %v within 1px", i, sum, goldenParams.Width)
		}
	}
}

func TestDeterminism(t *testing.T) {
	aspects := []float64{1.0, 1.5, 1.0, 1.78, 0.67, 1.5, 1.0, 1.33, 1.78}
	items := itemsFromAspects(aspects)

	a := Compute(items, goldenParams)
	b := Compute(items, goldenParams)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("identical inputs produced different geometry (-a +b):\n%s", diff)
	}
}

func TestDegenerateInputs(t *testing.T) {
	items := itemsFromAspects([]float64{1.0, 1.5})

	for name, p := range map[string]Params{
		"zero width":  {RowHeight: 220, Width: 0, Gap: 4},
		"zero height": {RowHeight: 0, Width: 900, Gap: 4},
	} {
		if l := Compute(items, p); len(l.Rows) != 0 || l.Height != 0 {
			t.Errorf("%s: want empty layout, got %+v", name, l)
		}
	}
	if l := Compute(nil, goldenParams); len(l.Rows) != 0 {
		t.Errorf("empty sequence: want empty layout, got %+v", l)
	}
}

func TestSingleWideTileDoesNotCloseRow(t *testing.T) {
	// One absurdly wide panorama that alone exceeds the container.
	l := Compute(itemsFromAspects([]float64{8.0, 1.0}), goldenParams)
	if len(l.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(l.Rows))
	}
	if len(l.Rows[0].Tiles) != 2 {
		t.Errorf("the wide tile must wait for a second item; row has %d tiles", len(l.Rows[0].Tiles))
	}
}

func TestFinalRowNeverStretched(t *testing.T) {
	l := Compute(itemsFromAspects([]float64{1.0}), goldenParams)
	if len(l.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(l.Rows))
	}
	if h := l.Rows[0].Height; h > goldenParams.RowHeight {
		t.Errorf("final row height %v exceeds target %v", h, goldenParams.RowHeight)
	}
}

func TestAspectFallback(t *testing.T) {
	items := []model.Item{
		{ID: "broken"}, // no geometry
		{ID: "fine", Width: 1500, Height: 1000},
	}
	l := Compute(items, goldenParams)
	tiles := l.Tiles()
	if len(tiles) != 2 {
		t.Fatalf("tiles = %d, want 2", len(tiles))
	}
	h := l.Rows[0].Height
	if got, want := tiles[0].W, FallbackAspect*h; math.Abs(got-want) > 0.01 {
		t.Errorf("fallback tile width = %v, want %v", got, want)
	}
}

func TestTotalHeightCoversRows(t *testing.T) {
	aspects := []float64{1.0, 1.5, 1.0, 1.78, 0.67, 1.5, 1.0, 1.33, 1.78}
	l := Compute(itemsFromAspects(aspects), goldenParams)

	last := l.Rows[len(l.Rows)-1]
	if want := last.Y + last.Height; math.Abs(l.Height-want) > 0.01 {
		t.Errorf("layout height = %v, want %v", l.Height, want)
	}
}
