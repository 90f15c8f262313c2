package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ottmarv/gotile/internal/display"
	"github.com/ottmarv/gotile/internal/tile"
	"github.com/ottmarv/gotile/internal/worldmap"
)

// Shared test fixtures: a handful of registered assets with recognisable
// pixel patterns, a pure-Go decode oracle, and a naive reference renderer
// the engine's output is compared against.

var testAssets = struct {
	solids   []*tile.Asset
	gradient *tile.Asset
	overlays []*tile.Asset
}{}

func init() {
	for _, v := range []uint16{0x1111, 0x2222, 0x3333, 0x4444} {
		var pix [tile.TileSize * tile.TileSize]uint16
		for i := range pix {
			pix[i] = v
		}
		testAssets.solids = append(testAssets.solids,
			tile.Register(&tile.Asset{Data: tile.Encode(pix[:])}))
	}

	var grad [tile.TileSize * tile.TileSize]uint16
	for i := range grad {
		grad[i] = uint16(i)
	}
	testAssets.gradient = tile.Register(&tile.Asset{Data: tile.Encode(grad[:])})

	// overlay 0: a centred 16x16 square
	// overlay 1: alternating pixels, the single-write fallback path
	// overlay 2: full rows, the pure DMA path
	// overlay 3: ragged rows mixing all three paths
	// overlay 4: a hollow ring, edge bits only on interior rows
	masks := [][tile.TileSize]uint32{}
	var square, alt, full, ragged, ring [tile.TileSize]uint32
	for y := 8; y < 24; y++ {
		square[y] = 0x00ffff00
	}
	for y := range alt {
		alt[y] = 0x55555555
	}
	for y := range full {
		full[y] = 0xffffffff
	}
	for y := range ragged {
		ragged[y] = 0xf0c3a581 >> uint(y%7)
	}
	for y := range ring {
		if y == 0 || y == tile.TileSize-1 {
			ring[y] = 0xffffffff
		} else {
			ring[y] = 0x80000001
		}
	}
	masks = append(masks, square, alt, full, ragged, ring)

	for n, mask := range masks {
		var pix [tile.TileSize * tile.TileSize]uint16
		for i := range pix {
			if mask[i/tile.TileSize]>>(i%tile.TileSize)&1 != 0 {
				pix[i] = 0x8000 | uint16(n)<<8 | uint16(i&0xff)
			}
		}
		testAssets.overlays = append(testAssets.overlays, tile.Register(&tile.Asset{
			Data: tile.EncodeMasked(pix[:], mask[:]),
			Mask: append([]uint32(nil), mask[:]...),
		}))
	}
}

// decodePure is an independent decode oracle with no DMA involvement.
func decodePure(a *tile.Asset) *tile.Decoded {
	d := new(tile.Decoded)
	di := 0
	for si := 0; si < len(a.Data); {
		ctrl := a.Data[si]
		si++
		literals := int(ctrl & 0xff)
		run := int(ctrl >> 8)
		if literals == 0 {
			di += run
			continue
		}
		copy(d.Pix[di:di+literals], a.Data[si:si+literals])
		last := a.Data[si+literals-1]
		si += literals
		di += literals
		for i := 0; i < run; i++ {
			d.Pix[di+i] = last
		}
		di += run
	}
	copy(d.Mask[:], a.Mask)
	return d
}

// blitRef writes one tile into fb pixel by pixel with bounds clipping.
func blitRef(fb []uint16, d *tile.Decoded, sx, sy int, masked bool) {
	for y := 0; y < tile.TileSize; y++ {
		dy := sy + y
		if dy < 0 || dy >= display.Height {
			continue
		}
		for x := 0; x < tile.TileSize; x++ {
			dx := sx + x
			if dx < 0 || dx >= display.Width {
				continue
			}
			if masked && d.Mask[y]>>uint(x)&1 == 0 {
				continue
			}
			fb[dx+dy*display.Width] = d.Pix[y*tile.TileSize+x]
		}
	}
}

// refRender renders the same frame the engine would, naively.
func refRender(src worldmap.Source, viewport image.Point) []uint16 {
	const subtileMask = tile.TileSize - 1
	fb := make([]uint16, display.Width*display.Height)
	subX := viewport.X & subtileMask
	subY := viewport.Y & subtileMask

	for sy := -subY; sy < display.Height; sy += tile.TileSize {
		for sx := -subX; sx < display.Width; sx += tile.TileSize {
			cell := image.Pt((viewport.X+sx)&^subtileMask, (viewport.Y+sy+subY)&^subtileMask)
			layers := src.Resolve(cell)
			if layers.Len() == 0 {
				continue
			}
			blitRef(fb, decodePure(layers.Layer(0)), sx, sy, false)
			for i := 1; i < layers.Len(); i++ {
				blitRef(fb, decodePure(layers.Layer(i)), sx, sy, true)
			}
		}
	}
	return fb
}

func newTestEngine(t *testing.T, src worldmap.Source, opts ...Opt) (*Engine, *display.Display) {
	t.Helper()
	d := display.New(display.NopTransport{})
	e, err := New(d, src, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, d
}

// testMap builds an 8x8 cell map with repeated bases and scattered
// overlays, enough to exercise both caches and the deferred overlay list.
func testMap(t *testing.T) worldmap.Source {
	t.Helper()
	table := append(append([]*tile.Asset{}, testAssets.solids...), testAssets.overlays...)
	table = append(table, testAssets.gradient)
	m := worldmap.NewStaticMap(8, table)

	for cy := 0; cy < 8; cy++ {
		for cx := 0; cx < 8; cx++ {
			base := (cx + cy) % len(testAssets.solids)
			switch {
			case (cx+cy)%3 == 0:
				require.NoError(t, m.SetCell(cx, cy, base, len(testAssets.solids)+(cx%len(testAssets.overlays))))
			case cx == cy:
				require.NoError(t, m.SetCell(cx, cy, len(table)-1)) // gradient base
			default:
				require.NoError(t, m.SetCell(cx, cy, base))
			}
		}
	}
	return m
}
