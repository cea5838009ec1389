package facet

import (
	"github.com/fkoehler/ansel/model"
)

// Accessor returns an item's value(s) for one dimension. A nil or empty
// result means the attribute is absent for that item; absent values never
// match a selection.
type Accessor func(model.Item) []string

// Dimension describes one filter axis: its key, whether items carry multiple
// values on it, and how to read those values off an item.
type Dimension struct {
	Key    string
	Multi  bool
	Values Accessor
}

// Registry is the data-driven dimension table. Evaluate and the count
// operations are dimension-agnostic: everything they need to know about an
// axis lives here.
type Registry struct {
	order []string
	dims  map[string]Dimension
}

// NewRegistry returns an empty dimension registry.
func NewRegistry() *Registry {
	return &Registry{dims: make(map[string]Dimension)}
}

// Register adds or replaces a dimension. Dimensions with an empty key or a
// nil accessor are ignored.
func (r *Registry) Register(d Dimension) {
	if d.Key == "" || d.Values == nil {
		return
	}
	if _, ok := r.dims[d.Key]; !ok {
		r.order = append(r.order, d.Key)
	}
	r.dims[d.Key] = d
}

// Lookup returns the dimension registered under key.
func (r *Registry) Lookup(key string) (Dimension, bool) {
	d, ok := r.dims[key]
	return d, ok
}

// Keys returns all dimension keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// DefaultRegistry covers the attributes the analysis pipeline emits today:
// the categorical axes, the tag axes, and bucketed numeric axes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Dimension{Key: "category", Values: func(it model.Item) []string { return single(it.Category) }})
	r.Register(Dimension{Key: "camera", Values: func(it model.Item) []string { return single(it.Camera) }})
	r.Register(Dimension{Key: "grading", Values: func(it model.Item) []string { return single(it.GradingStyle) }})
	r.Register(Dimension{Key: "status", Values: func(it model.Item) []string { return single(string(it.Status)) }})
	r.Register(Dimension{Key: "vibe", Multi: true, Values: func(it model.Item) []string { return it.Vibes }})
	r.Register(Dimension{Key: "object", Multi: true, Values: func(it model.Item) []string { return it.Objects }})
	r.Register(Dimension{Key: "scene", Multi: true, Values: func(it model.Item) []string { return it.Scenes }})
	r.Register(Dimension{Key: "score", Values: func(it model.Item) []string { return single(ScoreBucket(it.AestheticScore)) }})
	r.Register(Dimension{Key: "brightness", Values: func(it model.Item) []string { return single(BrightnessBucket(it.Brightness)) }})
	r.Register(Dimension{Key: "hue", Values: func(it model.Item) []string { return single(HueBucket(it.Hue)) }})
	return r
}

// ScoreBucket maps an aesthetic score (0..10) onto a coarse facet value.
func ScoreBucket(v float64) string {
	switch {
	case v <= 0:
		return ""
	case v < 4:
		return "low"
	case v < 7:
		return "mid"
	default:
		return "high"
	}
}

// BrightnessBucket maps a normalized brightness (0..1) onto a facet value.
func BrightnessBucket(v float64) string {
	switch {
	case v <= 0:
		return ""
	case v < 0.33:
		return "dark"
	case v < 0.66:
		return "medium"
	default:
		return "bright"
	}
}

// HueBucket maps a hue angle in degrees onto a named color band.
func HueBucket(deg float64) string {
	if deg <= 0 {
		return ""
	}
	for deg >= 360 {
		deg -= 360
	}
	switch {
	case deg < 60:
		return "red"
	case deg < 120:
		return "yellow"
	case deg < 180:
		return "green"
	case deg < 240:
		return "cyan"
	case deg < 300:
		return "blue"
	default:
		return "magenta"
	}
}
