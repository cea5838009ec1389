package nav

import "github.com/fkoehler/ansel/model"

// ToggleSelected flips id's membership in the multi-select set. Unknown ids
// are a no-op.
func (c *Controller) ToggleSelected(id model.ItemID) {
	if _, ok := c.pos[id]; !ok {
		return
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return
	}
	c.selected[id] = struct{}{}
}

// IsSelected reports membership in the multi-select set.
func (c *Controller) IsSelected(id model.ItemID) bool {
	_, ok := c.selected[id]
	return ok
}

// SelectAll selects every id in the currently filtered sequence — never the
// full collection.
func (c *Controller) SelectAll() {
	for _, id := range c.seq {
		c.selected[id] = struct{}{}
	}
}

// ClearSelection empties the multi-select set.
func (c *Controller) ClearSelection() {
	c.selected = make(map[model.ItemID]struct{})
}

// Selected returns the multi-select set in sequence order.
func (c *Controller) Selected() []model.ItemID {
	out := make([]model.ItemID, 0, len(c.selected))
	for _, id := range c.seq {
		if _, ok := c.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ApplyStatus emits one status-change intent per selected id, in sequence
// order. Invalid statuses and an empty selection are no-ops.
func (c *Controller) ApplyStatus(status model.Status) {
	if !status.Valid() {
		return
	}
	for _, id := range c.Selected() {
		c.sink.StatusChanged(id, status)
	}
}

// ApplyTag emits one tag-edit intent per selected id.
func (c *Controller) ApplyTag(tag string, added bool) {
	if tag == "" {
		return
	}
	for _, id := range c.Selected() {
		c.sink.TagEdited(id, tag, added)
	}
}

// ResolveLocation emits a location accept/reject intent for the focused
// item. A no-op while browsing.
func (c *Controller) ResolveLocation(accepted bool) {
	if c.mode != ModeFocused || c.current == "" {
		return
	}
	c.sink.LocationResolved(c.current, accepted)
}
