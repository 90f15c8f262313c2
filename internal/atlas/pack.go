package atlas

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ottmarv/gotile/internal/tile"
)

// Asset pack wire format, little-endian:
//
//	magic   "GTPK"
//	count   uint32
//	per tile:
//	  dataWords uint32
//	  maskWords uint32 (0 or TileSize)
//	  data      [dataWords]uint16
//	  mask      [maskWords]uint32
var packMagic = [4]byte{'G', 'T', 'P', 'K'}

// Write serialises the pack.
func (p *Pack) Write(w io.Writer) error {
	if _, err := w.Write(packMagic[:]); err != nil {
		return fmt.Errorf("atlas: write pack: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(p.Tiles))); err != nil {
		return fmt.Errorf("atlas: write pack: %w", err)
	}
	for i, a := range p.Tiles {
		hdr := [2]uint32{uint32(len(a.Data)), uint32(len(a.Mask))}
		if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
			return fmt.Errorf("atlas: write tile %d: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, a.Data); err != nil {
			return fmt.Errorf("atlas: write tile %d: %w", i, err)
		}
		if len(a.Mask) > 0 {
			if err := binary.Write(w, binary.LittleEndian, a.Mask); err != nil {
				return fmt.Errorf("atlas: write tile %d: %w", i, err)
			}
		}
	}
	return nil
}

// ReadPack deserialises a pack and registers its assets.
func ReadPack(r io.Reader) (*Pack, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("atlas: read pack: %w", err)
	}
	if magic != packMagic {
		return nil, fmt.Errorf("atlas: bad magic %q", magic)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("atlas: read pack: %w", err)
	}

	p := &Pack{}
	for i := uint32(0); i < count; i++ {
		var hdr [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return nil, fmt.Errorf("atlas: read tile %d: %w", i, err)
		}
		dataWords, maskWords := hdr[0], hdr[1]
		if dataWords > tile.MaxStreamWords {
			return nil, fmt.Errorf("atlas: tile %d: stream of %d words exceeds staging capacity", i, dataWords)
		}
		if maskWords != 0 && maskWords != tile.TileSize {
			return nil, fmt.Errorf("atlas: tile %d: mask of %d rows", i, maskWords)
		}

		a := &tile.Asset{Data: make([]uint16, dataWords)}
		if err := binary.Read(r, binary.LittleEndian, a.Data); err != nil {
			return nil, fmt.Errorf("atlas: read tile %d: %w", i, err)
		}
		if maskWords > 0 {
			a.Mask = make([]uint32, maskWords)
			if err := binary.Read(r, binary.LittleEndian, a.Mask); err != nil {
				return nil, fmt.Errorf("atlas: read tile %d: %w", i, err)
			}
		}
		p.Tiles = append(p.Tiles, tile.Register(a))
	}
	return p, nil
}
