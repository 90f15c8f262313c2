package render

import (
	"image"
	"math/bits"

	"github.com/ottmarv/gotile/internal/display"
	"github.com/ottmarv/gotile/internal/dma"
	"github.com/ottmarv/gotile/internal/tile"
)

// tileRect returns the destination rectangle of a tile at dst clipped to
// the visible display.
func (e *Engine) tileRect(dst image.Point) image.Rectangle {
	return image.Rectangle{
		Min: dst,
		Max: dst.Add(image.Pt(tile.TileSize, tile.TileSize)),
	}.Intersect(e.d.Bounds())
}

// drawOpaqueTile copies t's pixels to dst, one DMA transfer per visible
// row. It reports whether the full tile rectangle was drawn; a clipped
// draw has an incomplete screen footprint and must not be registered for
// screen-copy reuse.
func (e *Engine) drawOpaqueTile(t *tile.Decoded, dst image.Point) bool {
	r := e.tileRect(dst)
	if r.Empty() {
		return false
	}
	src := r.Min.Sub(dst)
	fb := e.d.Framebuffer()
	si := src.X + src.Y*tile.TileSize
	di := r.Min.X + r.Min.Y*display.Width
	w := r.Dx()

	for y := 0; y < r.Dy(); y++ {
		e.ch0.Wait()
		dma.Copy(e.ch0, fb[di:], t.Pix[si:], w)
		si += tile.TileSize
		di += display.Width
	}
	e.ch0.Wait()

	return r.Dx() == tile.TileSize && r.Dy() == tile.TileSize
}

// drawTransparentTile composites t onto the framebuffer at dst, guided by
// the tile's row masks. Each row's mask is shifted to the clipped origin
// and walked as maximal runs: a run of set bits becomes one DMA copy, a
// run of clear bits just advances the cursors, and spans too short to be
// worth a transfer degrade to a single direct pixel write. Source,
// destination, and mask cursors advance in lockstep by exactly the
// consumed run length.
func (e *Engine) drawTransparentTile(t *tile.Decoded, dst image.Point) bool {
	r := e.tileRect(dst)
	if r.Empty() {
		return false
	}
	src := r.Min.Sub(dst)
	fb := e.d.Framebuffer()
	si := src.X + src.Y*tile.TileSize
	di := r.Min.X + r.Min.Y*display.Width
	w := uint(r.Dx())

	for y := 0; y < r.Dy(); y++ {
		mask := t.Mask[src.Y+y] >> uint(src.X)
		if w < 32 {
			mask &= 1<<w - 1
		}

		x := 0
		for mask != 0 {
			const lookahead = 0x7
			var n int
			switch {
			case mask&lookahead == lookahead:
				n = bits.TrailingZeros32(^mask)
				e.ch0.Wait()
				dma.Copy(e.ch0, fb[di+x:], t.Pix[si+x:], n)
			case mask&lookahead == 0:
				n = bits.TrailingZeros32(mask)
			default:
				if mask&1 != 0 {
					fb[di+x] = t.Pix[si+x]
				}
				n = 1
			}
			x += n
			if n == 32 {
				mask = 0
			} else {
				mask >>= uint(n)
			}
		}

		si += tile.TileSize
		di += display.Width
	}
	e.ch0.Wait()

	return r.Dx() == tile.TileSize && r.Dy() == tile.TileSize
}

// copyTile duplicates an already-rendered tile rectangle from src to dst
// within the framebuffer, one DMA transfer per row. The caller guarantees
// src was fully drawn this frame (the base cache's invariant), so only the
// destination needs clipping.
func (e *Engine) copyTile(src, dst image.Point) {
	r := e.tileRect(dst)
	if r.Empty() {
		return
	}
	src = src.Add(r.Min.Sub(dst))
	fb := e.d.Framebuffer()
	si := src.X + src.Y*display.Width
	di := r.Min.X + r.Min.Y*display.Width

	for y := 0; y < r.Dy(); y++ {
		e.ch1.Wait()
		dma.Copy(e.ch1, fb[di:], fb[si:], r.Dx())
		si += display.Width
		di += display.Width
	}
	e.ch1.Wait()
}
