package ansel

import (
	"sort"

	"github.com/fkoehler/ansel/model"
)

// SortKey selects the base ordering of the browsing sequence. Filtering
// never reorders; it only removes.
type SortKey string

const (
	// SortSnapshot keeps the order the snapshot was written in.
	SortSnapshot SortKey = "snapshot"

	// SortCaptureTime orders by capture timestamp, oldest first.
	SortCaptureTime SortKey = "capture_time"

	// SortScore orders by aesthetic score, highest first.
	SortScore SortKey = "score"

	// SortHue orders by dominant hue, ascending.
	SortHue SortKey = "hue"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortSnapshot, SortCaptureTime, SortScore, SortHue:
		return true
	}
	return false
}

// sortItems orders items in place by key. Sorting is stable, so equal keys
// keep snapshot order and repeated sorts are deterministic.
func sortItems(items []model.Item, key SortKey) {
	switch key {
	case SortCaptureTime:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CapturedAt.Before(items[j].CapturedAt)
		})
	case SortScore:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].AestheticScore > items[j].AestheticScore
		})
	case SortHue:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Hue < items[j].Hue
		})
	}
}
