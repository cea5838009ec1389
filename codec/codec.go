// Package codec centralizes snapshot encoding.
//
// Collection snapshots are produced by the analysis pipeline and read by the
// engine; the codec name is part of the contract between the two. Snapshot
// files are self-describing: the loader picks the codec by name (or file
// extension), so changing a codec is a breaking-change boundary.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is specified.
var Default Codec = JSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "json+zstd":
		return Zstd{Inner: JSON{}}, true
	case "json+lz4":
		return LZ4{Inner: JSON{}}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
