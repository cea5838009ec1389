// Package config loads engine tuning from a TOML file. Every knob has a
// working default, so a missing or partial file never blocks startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Tuning collects the adjustable engine parameters.
type Tuning struct {
	// Layout.
	RowHeight float64 `toml:"row_height"`
	Gap       float64 `toml:"gap"`

	// Cache policy.
	ProximityPad float64 `toml:"proximity_pad"`
	ZoomLevel    float64 `toml:"zoom_level"`
	CrossfadeMS  int     `toml:"crossfade_ms"`
	MicroEdge    int     `toml:"micro_edge"`

	// Fetch resources.
	FetchWorkers int   `toml:"fetch_workers"`
	BytesPerSec  int64 `toml:"bytes_per_sec"`

	// Drift.
	NeighborK int `toml:"neighbor_k"`
}

// Default returns the tuning used when no file overrides it.
func Default() Tuning {
	return Tuning{
		RowHeight:    220,
		Gap:          4,
		ProximityPad: 200,
		ZoomLevel:    2.0,
		CrossfadeMS:  180,
		MicroEdge:    48,
		FetchWorkers: 4,
		BytesPerSec:  0,
		NeighborK:    8,
	}
}

// Crossfade returns the crossfade duration.
func (t Tuning) Crossfade() time.Duration {
	return time.Duration(t.CrossfadeMS) * time.Millisecond
}

// Validate rejects values that would break layout or fetching.
func (t Tuning) Validate() error {
	if t.RowHeight <= 0 {
		return fmt.Errorf("row_height must be positive, got %v", t.RowHeight)
	}
	if t.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %v", t.Gap)
	}
	if t.ProximityPad < 0 {
		return fmt.Errorf("proximity_pad must not be negative, got %v", t.ProximityPad)
	}
	if t.ZoomLevel <= 0 {
		return fmt.Errorf("zoom_level must be positive, got %v", t.ZoomLevel)
	}
	if t.CrossfadeMS < 0 {
		return fmt.Errorf("crossfade_ms must not be negative, got %d", t.CrossfadeMS)
	}
	if t.MicroEdge <= 0 {
		return fmt.Errorf("micro_edge must be positive, got %d", t.MicroEdge)
	}
	if t.FetchWorkers <= 0 {
		return fmt.Errorf("fetch_workers must be positive, got %d", t.FetchWorkers)
	}
	if t.BytesPerSec < 0 {
		return fmt.Errorf("bytes_per_sec must not be negative, got %d", t.BytesPerSec)
	}
	if t.NeighborK <= 0 {
		return fmt.Errorf("neighbor_k must be positive, got %d", t.NeighborK)
	}
	return nil
}

// Load reads tuning from path. A missing file returns the defaults; a file
// that is present but malformed or invalid is an error, since silently
// ignoring an explicit config hides mistakes.
func Load(path string) (Tuning, error) {
	t := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return t, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &t); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config: %w", err)
	}
	return t, nil
}

// Save writes tuning to path.
func Save(path string, t Tuning) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := toml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
