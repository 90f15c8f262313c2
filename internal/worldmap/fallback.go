package worldmap

import (
	"encoding/binary"
	"image"

	"github.com/cespare/xxhash"

	"github.com/ottmarv/gotile/internal/tile"
)

// Fallback wraps a Source so that coverage is never blank: wherever the
// inner source has no authored layers, a deterministic pick from the Ocean
// set is substituted. The pick hashes the cell coordinate, so the same cell
// always shows the same filler tile and neighbouring cells vary.
type Fallback struct {
	Inner Source
	Ocean []*tile.Asset
}

// Resolve implements Source.
func (f *Fallback) Resolve(p image.Point) LayerSet {
	s := f.Inner.Resolve(p)
	if s.Len() > 0 || len(f.Ocean) == 0 {
		return s
	}

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(p.X))
	binary.LittleEndian.PutUint32(buf[4:], uint32(p.Y))
	i := xxhash.Sum64(buf[:]) % uint64(len(f.Ocean))
	s.Push(f.Ocean[i])
	return s
}
