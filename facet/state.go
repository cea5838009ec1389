package facet

import "sort"

// Mode controls how a multi-valued selection combines within one dimension.
// The zero value is ModeUnion, so a dimension absent from the mode map
// defaults to union.
type Mode uint8

const (
	// ModeUnion matches an item whose value set intersects the selection.
	ModeUnion Mode = iota
	// ModeIntersection matches an item whose value set contains every
	// selected value.
	ModeIntersection
)

// String returns the stable name of the mode.
func (m Mode) String() string {
	if m == ModeIntersection {
		return "intersection"
	}
	return "union"
}

// State is the declarative filter state: per-dimension selected value sets
// plus per-dimension combinator modes. Dimensions are always combined with
// logical AND; Mode only matters within a multi-valued dimension.
//
// State is a plain value holder; dimension validation happens in Index, which
// consults the dimension registry.
type State struct {
	selected map[string]map[string]struct{}
	modes    map[string]Mode
}

// NewState returns an empty filter state.
func NewState() *State {
	return &State{
		selected: make(map[string]map[string]struct{}),
		modes:    make(map[string]Mode),
	}
}

// Toggle flips membership of value in the selection set for dim.
func (s *State) Toggle(dim, value string) {
	set, ok := s.selected[dim]
	if !ok {
		set = make(map[string]struct{})
		s.selected[dim] = set
	}
	if _, ok := set[value]; ok {
		delete(set, value)
		if len(set) == 0 {
			delete(s.selected, dim)
		}
		return
	}
	set[value] = struct{}{}
}

// SetMode sets the combinator mode for dim only; other dimensions keep theirs.
func (s *State) SetMode(dim string, m Mode) {
	if m == ModeUnion {
		delete(s.modes, dim)
		return
	}
	s.modes[dim] = m
}

// Mode returns the combinator mode for dim, defaulting to ModeUnion.
func (s *State) Mode(dim string) Mode {
	return s.modes[dim]
}

// Selected reports whether value is currently selected in dim.
func (s *State) Selected(dim, value string) bool {
	_, ok := s.selected[dim][value]
	return ok
}

// Selection returns the selected values for dim in sorted order.
func (s *State) Selection(dim string) []string {
	set := s.selected[dim]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Active reports whether any dimension has a non-empty selection.
func (s *State) Active() bool {
	return len(s.selected) > 0
}

// ActiveDimensions returns the keys of all dimensions with a non-empty
// selection, in sorted order.
func (s *State) ActiveDimensions() []string {
	if len(s.selected) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.selected))
	for dim := range s.selected {
		out = append(out, dim)
	}
	sort.Strings(out)
	return out
}

// Clear drops the selection for dim. The mode is kept.
func (s *State) Clear(dim string) {
	delete(s.selected, dim)
}

// Reset drops every selection and every mode override.
func (s *State) Reset() {
	s.selected = make(map[string]map[string]struct{})
	s.modes = make(map[string]Mode)
}
