// Package atlas converts authored PNG artwork into the engine's compressed
// tile assets, and serialises the result as a loadable asset pack.
//
// An atlas image is a grid of 32x32 tiles, read row-major. Pixels are
// reduced to RGB565; a tile with any translucent pixels gets a row mask
// derived from its alpha channel and only its opaque pixels are stored.
package atlas

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/ottmarv/gotile/internal/tile"
)

// alphaOpaque is the threshold above which a pixel counts as opaque.
// Partial translucency is not representable in a 1-bit mask; art is
// expected to use hard edges.
const alphaOpaque = 0x8000

// Pack is a baked set of tile assets, in atlas order.
type Pack struct {
	Tiles []*tile.Asset
}

// RGB565 packs a colour into the display's 16-bit pixel format.
func RGB565(r, g, b uint32) uint16 {
	return uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)
}

// BakeAtlas slices img into tiles, compresses each and registers the
// resulting assets. The image dimensions must be multiples of the tile
// size.
func BakeAtlas(img image.Image) (*Pack, error) {
	b := img.Bounds()
	if b.Dx()%tile.TileSize != 0 || b.Dy()%tile.TileSize != 0 {
		return nil, fmt.Errorf("atlas: image is %dx%d, want multiples of %d", b.Dx(), b.Dy(), tile.TileSize)
	}

	// normalise to RGBA once so per-pixel reads are uniform
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	p := &Pack{}
	for ty := 0; ty < b.Dy()/tile.TileSize; ty++ {
		for tx := 0; tx < b.Dx()/tile.TileSize; tx++ {
			p.Tiles = append(p.Tiles, bakeTile(rgba, tx*tile.TileSize, ty*tile.TileSize))
		}
	}
	return p, nil
}

func bakeTile(img *image.RGBA, ox, oy int) *tile.Asset {
	var pix [tile.TileSize * tile.TileSize]uint16
	var mask [tile.TileSize]uint32
	opaque := true

	for y := 0; y < tile.TileSize; y++ {
		for x := 0; x < tile.TileSize; x++ {
			r, g, b, a := img.At(ox+x, oy+y).RGBA()
			if a < alphaOpaque {
				opaque = false
				continue
			}
			mask[y] |= 1 << uint(x)
			pix[y*tile.TileSize+x] = RGB565(r, g, b)
		}
	}

	if opaque {
		return tile.Register(&tile.Asset{Data: tile.Encode(pix[:])})
	}
	return tile.Register(&tile.Asset{
		Data: tile.EncodeMasked(pix[:], mask[:]),
		Mask: append([]uint32(nil), mask[:]...),
	})
}
