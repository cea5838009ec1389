package testutil

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fkoehler/ansel/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Pick returns a random element of values.
func Pick[T any](r *RNG, values []T) T {
	return values[r.Intn(len(values))]
}

// Subset returns a random subset of values, possibly empty.
func Subset(r *RNG, values []string) []string {
	var out []string
	for _, v := range values {
		if r.Intn(2) == 0 {
			out = append(out, v)
		}
	}
	return out
}

var (
	categories = []string{"portrait", "street", "landscape", "macro", "abstract"}
	cameras    = []string{"x100v", "q3", "a7iv", "gfx100"}
	gradings   = []string{"neutral", "filmic", "punchy"}
	vibes      = []string{"moody", "warm", "airy", "gritty"}
	objects    = []string{"person", "car", "tree", "building", "animal"}
	scenes     = []string{"city", "forest", "coast", "interior"}
	statuses   = []model.Status{model.StatusPending, model.StatusKept, model.StatusRejected}
)

// geometries are plausible sensor aspect ratios, portrait and landscape.
var geometries = [][2]int{
	{1200, 800}, {800, 1200}, {1600, 900}, {900, 1600},
	{1000, 1000}, {1350, 900}, {2400, 1000},
}

// Items generates n deterministic item fixtures with realistic attribute
// spreads. The same RNG seed yields the same items.
func Items(r *RNG, n int) []model.Item {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	items := make([]model.Item, n)
	for i := range items {
		geo := Pick(r, geometries)
		items[i] = model.Item{
			ID:             model.ItemID(fmt.Sprintf("item-%04d", i)),
			Width:          geo[0],
			Height:         geo[1],
			Category:       Pick(r, categories),
			Camera:         Pick(r, cameras),
			GradingStyle:   Pick(r, gradings),
			Status:         Pick(r, statuses),
			Vibes:          Subset(r, vibes),
			Objects:        Subset(r, objects),
			Scenes:         Subset(r, scenes),
			AestheticScore: r.Float64(),
			Hue:            r.Float64() * 360,
			Brightness:     r.Float64(),
			CapturedAt:     base.Add(time.Duration(r.Intn(90*24)) * time.Hour),
		}
	}
	return items
}
