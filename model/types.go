package model

import (
	"fmt"
	"time"
)

// ItemID is the user-facing stable identifier of a collection item.
// IDs are assigned by the analysis pipeline and never change within a session.
type ItemID string

// Status is the curation state of an item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusKept     Status = "kept"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known curation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusKept, StatusRejected:
		return true
	default:
		return false
	}
}

// Tier is one fidelity level of an item's image resource.
// Tiers form an ordered ladder from TierMicro (lowest) to TierFull (highest).
type Tier uint8

const (
	TierUnknown Tier = iota
	TierMicro
	TierThumb
	TierDisplay
	TierFull
)

// Ladder returns all tiers in ascending fidelity order.
func Ladder() []Tier {
	return []Tier{TierMicro, TierThumb, TierDisplay, TierFull}
}

// Next returns the tier one rung above t. ok is false at the top of the
// ladder or for an unknown tier.
func (t Tier) Next() (Tier, bool) {
	switch t {
	case TierMicro:
		return TierThumb, true
	case TierThumb:
		return TierDisplay, true
	case TierDisplay:
		return TierFull, true
	default:
		return TierUnknown, false
	}
}

// Valid reports whether t is a rung of the ladder.
func (t Tier) Valid() bool {
	return t >= TierMicro && t <= TierFull
}

// String returns the stable name of the tier, as used in snapshot files
// and resource locators.
func (t Tier) String() string {
	switch t {
	case TierMicro:
		return "micro"
	case TierThumb:
		return "thumb"
	case TierDisplay:
		return "display"
	case TierFull:
		return "full"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// ParseTier maps a stable tier name back to its Tier. ok is false for
// unknown names.
func ParseTier(name string) (Tier, bool) {
	switch name {
	case "micro":
		return TierMicro, true
	case "thumb":
		return TierThumb, true
	case "display":
		return TierDisplay, true
	case "full":
		return TierFull, true
	default:
		return TierUnknown, false
	}
}

// Item is one photo in the collection snapshot.
//
// ID and geometry are immutable for the session. Status and the tag sets
// are mutable through curation intents; everything else is produced by the
// analysis pipeline.
type Item struct {
	ID     ItemID `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Single-valued categorical attributes.
	Category     string `json:"category,omitempty"`
	Camera       string `json:"camera,omitempty"`
	GradingStyle string `json:"grading_style,omitempty"`
	Status       Status `json:"status,omitempty"`

	// Multi-valued tag attributes.
	Vibes   []string `json:"vibes,omitempty"`
	Objects []string `json:"objects,omitempty"`
	Scenes  []string `json:"scenes,omitempty"`

	// Numeric attributes.
	AestheticScore  float64 `json:"aesthetic_score,omitempty"`
	Hue             float64 `json:"hue,omitempty"`
	Brightness      float64 `json:"brightness,omitempty"`
	DepthComplexity float64 `json:"depth_complexity,omitempty"`

	CapturedAt time.Time `json:"captured_at,omitzero"`

	// Locators maps tier name -> resource key understood by the configured
	// blob store. Entries may be missing per tier.
	Locators map[string]string `json:"locators,omitempty"`
}

// AspectRatio returns width/height, or 0 when the geometry is missing or
// degenerate. Consumers that need a drawable ratio apply their own fallback.
func (it Item) AspectRatio() float64 {
	if it.Width <= 0 || it.Height <= 0 {
		return 0
	}
	return float64(it.Width) / float64(it.Height)
}

// Locator returns the resource key for the given tier. ok is false when the
// snapshot carries no locator for that tier.
func (it Item) Locator(t Tier) (string, bool) {
	if it.Locators == nil {
		return "", false
	}
	key, ok := it.Locators[t.String()]
	return key, ok && key != ""
}
