// Package nav tracks focus, multi-select, and exploration history over the
// filtered, laid-out item sequence, and emits curation intents to an
// injected mutation sink. It never persists anything itself.
package nav

import (
	"github.com/fkoehler/ansel/model"
)

// Mode is the controller's presentation state.
type Mode uint8

const (
	// ModeBrowsing shows the grid with no focused item.
	ModeBrowsing Mode = iota
	// ModeFocused shows one item in detail.
	ModeFocused
)

// Sink receives curation intents. The engine emits one call per affected
// item and leaves persistence to the embedding shell.
type Sink interface {
	StatusChanged(id model.ItemID, status model.Status)
	TagEdited(id model.ItemID, tag string, added bool)
	LocationResolved(id model.ItemID, accepted bool)
}

// NopSink discards all intents.
type NopSink struct{}

func (NopSink) StatusChanged(model.ItemID, model.Status) {}
func (NopSink) TagEdited(model.ItemID, string, bool)     {}
func (NopSink) LocationResolved(model.ItemID, bool)      {}

// Controller is the navigation state machine. All methods are synchronous
// and expected from the shell's event loop; none of them fail — out-of-range
// and unknown-id calls are no-ops.
type Controller struct {
	seq []model.ItemID
	pos map[model.ItemID]int

	mode       Mode
	current    model.ItemID
	selectMode bool
	selected   map[model.ItemID]struct{}
	history    []model.ItemID

	sink Sink
}

// New creates a Controller emitting intents to sink. A nil sink discards.
func New(sink Sink) *Controller {
	if sink == nil {
		sink = NopSink{}
	}
	return &Controller{
		pos:      make(map[model.ItemID]int),
		selected: make(map[model.ItemID]struct{}),
		sink:     sink,
	}
}

// SetSequence installs the filtered+sorted id sequence. Call it whenever the
// filter state or sort key changes. Focus survives when the focused id is
// still present; otherwise the controller drops back to browsing. Selection
// and history are pruned to ids still in the sequence.
func (c *Controller) SetSequence(ids []model.ItemID) {
	c.seq = ids
	c.pos = make(map[model.ItemID]int, len(ids))
	for i, id := range ids {
		c.pos[id] = i
	}

	if c.current != "" {
		if _, ok := c.pos[c.current]; !ok {
			c.current = ""
			c.mode = ModeBrowsing
		}
	}

	for id := range c.selected {
		if _, ok := c.pos[id]; !ok {
			delete(c.selected, id)
		}
	}

	kept := c.history[:0]
	for _, id := range c.history {
		if _, ok := c.pos[id]; ok {
			kept = append(kept, id)
		}
	}
	c.history = kept
}

// Mode returns the current presentation state.
func (c *Controller) Mode() Mode { return c.mode }

// Current returns the focused id, or "" while browsing.
func (c *Controller) Current() model.ItemID { return c.current }

// SelectItem focuses id: Browsing -> Focused, or Focused -> Focused with a
// new id. Unknown ids are a no-op.
func (c *Controller) SelectItem(id model.ItemID) {
	if _, ok := c.pos[id]; !ok {
		return
	}
	c.current = id
	c.mode = ModeFocused
	c.selectMode = false
}

// Dismiss leaves the focused view: Focused -> Browsing.
func (c *Controller) Dismiss() {
	c.current = ""
	c.mode = ModeBrowsing
}

// EnterSelectMode forces Focused -> Browsing, clears the single focus, and
// arms multi-select.
func (c *Controller) EnterSelectMode() {
	c.Dismiss()
	c.selectMode = true
}

// SelectModeActive reports whether multi-select is armed.
func (c *Controller) SelectModeActive() bool { return c.selectMode }

// MoveNext advances focus along the sequence, clamped at the end.
func (c *Controller) MoveNext() { c.move(1) }

// MovePrevious retreats focus along the sequence, clamped at the start.
func (c *Controller) MovePrevious() { c.move(-1) }

func (c *Controller) move(delta int) {
	if c.mode != ModeFocused || len(c.seq) == 0 {
		return
	}
	i, ok := c.pos[c.current]
	if !ok {
		return
	}
	i += delta
	if i < 0 {
		i = 0
	}
	if i > len(c.seq)-1 {
		i = len(c.seq) - 1
	}
	c.current = c.seq[i]
}

// NavigateTo jumps focus to id for drift-style exploration, recording the
// departure point. Revisiting an id already in the history collapses the
// intervening detour: the stack truncates back to just before that id and
// nothing is pushed.
func (c *Controller) NavigateTo(id model.ItemID) {
	if _, ok := c.pos[id]; !ok {
		return
	}
	if idx := c.historyIndex(id); idx >= 0 {
		c.history = c.history[:idx]
	} else if c.current != "" && c.current != id {
		c.history = append(c.history, c.current)
	}
	c.current = id
	c.mode = ModeFocused
	c.selectMode = false
}

// Back pops the most recent history entry and makes it current without
// re-pushing anything. With an empty stack it is a no-op.
func (c *Controller) Back() {
	n := len(c.history)
	if n == 0 {
		return
	}
	c.current = c.history[n-1]
	c.history = c.history[:n-1]
	c.mode = ModeFocused
}

// History returns a copy of the exploration stack, oldest first.
func (c *Controller) History() []model.ItemID {
	out := make([]model.ItemID, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller) historyIndex(id model.ItemID) int {
	for i, h := range c.history {
		if h == id {
			return i
		}
	}
	return -1
}
