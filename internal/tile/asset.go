// Package tile holds the compressed tile asset registry and the codec that
// turns assets into pixel data.
//
// A tile is a 32x32 grid of RGB565 pixels. Assets store the pixels in a
// run-length word stream (see codec.go) plus, for transparent overlay
// tiles, one 32-bit opacity mask word per row.
package tile

import (
	"fmt"
	"sync"
)

const (
	// TileSize is the width and height in pixels of every tile.
	TileSize = 32

	// MaxStreamWords is the capacity of the codec's staging buffer. An
	// asset whose compressed stream exceeds it cannot be decoded and is
	// rejected at registration.
	MaxStreamWords = 2*TileSize*TileSize + 1
)

// ID identifies a registered asset. Two IDs are equal iff they refer to the
// same asset, which makes them usable as cache keys. The zero ID never
// refers to an asset.
type ID uint32

// Asset is an immutable compressed tile. Assets are registered once at
// startup and never mutated afterwards.
type Asset struct {
	// Data is the compressed pixel stream.
	Data []uint16
	// Mask holds one opacity word per row (bit x set = pixel x opaque).
	// Nil for fully opaque tiles.
	Mask []uint32

	id ID
}

// ID returns the asset's registered identity.
func (a *Asset) ID() ID { return a.id }

var registry struct {
	mu     sync.Mutex
	assets []*Asset
}

// Register assigns a stable identity to a and records it in the process-wide
// registry. Malformed assets indicate an authoring or corruption problem and
// are rejected by panic rather than error.
func Register(a *Asset) *Asset {
	if len(a.Data) > MaxStreamWords {
		panic(fmt.Sprintf("tile: compressed stream of %d words exceeds staging capacity %d",
			len(a.Data), MaxStreamWords))
	}
	if a.Mask != nil && len(a.Mask) != TileSize {
		panic(fmt.Sprintf("tile: mask has %d rows, want %d", len(a.Mask), TileSize))
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if a.id != 0 {
		panic(fmt.Sprintf("tile: asset %d registered twice", a.id))
	}
	registry.assets = append(registry.assets, a)
	a.id = ID(len(registry.assets))
	return a
}

// Lookup returns the asset registered under id, or nil.
func Lookup(id ID) *Asset {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if id == 0 || int(id) > len(registry.assets) {
		return nil
	}
	return registry.assets[id-1]
}

// Decoded is a decompressed tile, ready for blitting. It is owned by the
// scope or cache slot that produced it and has no lifecycle of its own.
type Decoded struct {
	// Pix is the pixel grid, row-major, x + y*TileSize.
	Pix [TileSize * TileSize]uint16
	// Mask mirrors Asset.Mask; all zero when the source had no mask.
	Mask [TileSize]uint32
}
