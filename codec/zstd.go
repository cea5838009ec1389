package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd wraps an inner codec with zstd compression. This is the default
// on-disk form for snapshots of large collections; a ~10k item snapshot
// compresses roughly 6x.
type Zstd struct {
	Inner Codec
}

func (c Zstd) inner() Codec {
	if c.Inner == nil {
		return Default
	}
	return c.Inner
}

// Marshal implements Codec.
func (c Zstd) Marshal(v any) ([]byte, error) {
	plain, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(plain, nil), nil
}

// Unmarshal implements Codec.
func (c Zstd) Unmarshal(data []byte, v any) error {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd decode: %w", err)
	}
	return c.inner().Unmarshal(plain, v)
}

// Name implements Codec.
func (c Zstd) Name() string { return c.inner().Name() + "+zstd" }
