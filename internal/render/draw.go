package render

import (
	"image"
	"runtime"
	"time"

	"github.com/ottmarv/gotile/internal/display"
	"github.com/ottmarv/gotile/internal/tile"
	"github.com/ottmarv/gotile/internal/worldmap"
)

// rowGroup is the height in pixels of the strip rendered per
// synchronization step: one tile row.
const rowGroup = tile.TileSize

// CacheStats counts one cache's activity over a frame.
type CacheStats struct {
	Lookups        int
	Misses         int
	InsertFailures int
}

// MissRate returns the miss percentage, 0 when there were no lookups.
func (c CacheStats) MissRate() float64 {
	if c.Lookups == 0 {
		return 0
	}
	return float64(c.Misses) / float64(c.Lookups) * 100
}

// FrameStats summarises one DrawFrame pass.
type FrameStats struct {
	DrawTime   time.Duration
	DecodeTime time.Duration

	// SlowDraw is set when transmission of the previous frame ran far
	// ahead of rendering, meaning the draw loop, not the link, was the
	// bottleneck. Advisory only.
	SlowDraw bool

	Base    CacheStats
	Overlay CacheStats
}

// gateOpen reports whether the next row group may be written: either the
// previous frame has fully left the framebuffer, or transmission has moved
// safely past the rows about to be overwritten.
func gateOpen(progress, drawnY int) bool {
	if progress >= display.Width*display.Height {
		return true
	}
	safeY := (progress - display.Width + 1) / display.Width
	return safeY-drawnY >= rowGroup
}

// consumerFarAhead reports the slow-draw condition: the transmitted row is
// more than two row groups below the last drawn one.
func consumerFarAhead(progress, drawnY int) bool {
	safeY := (progress - display.Width + 1) / display.Width
	return safeY-drawnY > 2*rowGroup
}

// DrawFrame renders one full frame of the map with viewport as the world
// coordinate of the screen's top-left pixel. It proceeds one row group at
// a time, waiting before each group until the display's transmission of
// the previous frame has moved out of the way, then returns to the caller
// who decides when to flush and when to draw again. When verbose is set a
// per-frame summary is emitted through the engine's logger.
func (e *Engine) DrawFrame(viewport image.Point, verbose bool) FrameStats {
	const subtileMask = tile.TileSize - 1

	var stats FrameStats
	e.base.Clear()
	e.overlay.Clear()
	e.pending = e.pending[:0]

	drawnY := 0
	worldY := viewport.Y
	subtileY := viewport.Y & subtileMask
	subtileX := viewport.X & subtileMask

	for {
		progress := e.d.FlushProgress()
		if !gateOpen(progress, drawnY) {
			// previous frame still owns these rows; spin until the
			// transport has moved past them
			runtime.Gosched()
			continue
		}
		if consumerFarAhead(progress, drawnY) {
			stats.SlowDraw = true
		}
		drawStart := time.Now()

		screenY := drawnY - subtileY
		for screenX := -subtileX; screenX < display.Width; screenX += tile.TileSize {
			worldX := viewport.X + screenX
			cell := image.Pt(worldX&^subtileMask, worldY&^subtileMask)
			e.drawCell(cell, image.Pt(screenX, screenY), &stats)
		}

		stats.DrawTime += time.Since(drawStart)

		drawnY += rowGroup
		worldY += rowGroup
		if screenY < 0 {
			// rows drawn above the visible top will be overwritten as
			// rendering continues downward; their cached screen
			// coordinates are about to go stale
			e.base.Clear()
		} else if screenY+tile.TileSize >= display.Height {
			break
		}
	}

	// overlays deferred from base-miss cells, composited now that the hit
	// path has had a chance to warm the overlay cache
	drawStart := time.Now()
	for _, d := range e.pending {
		e.drawOverlays(d.at, d.layers, &stats)
	}
	stats.DrawTime += time.Since(drawStart)

	if verbose {
		e.log.Infof("draw_time=%s decode_time=%s", stats.DrawTime, stats.DecodeTime)
		e.log.Infof("base tile cache: misses=%d lookups=%d insert_failures=%d miss_rate=%.2f%%",
			stats.Base.Misses, stats.Base.Lookups, stats.Base.InsertFailures, stats.Base.MissRate())
		e.log.Infof("overlay tile cache: misses=%d lookups=%d insert_failures=%d miss_rate=%.2f%%",
			stats.Overlay.Misses, stats.Overlay.Lookups, stats.Overlay.InsertFailures, stats.Overlay.MissRate())
		if stats.SlowDraw {
			e.log.Infof("slow draw detected")
		}
	}
	return stats
}

// drawCell renders one map cell at screen coordinate at.
func (e *Engine) drawCell(cell, at image.Point, stats *FrameStats) {
	layers := e.src.Resolve(cell)
	if layers.Len() == 0 {
		// no coverage at all; sources normally guarantee a base layer
		// via a fallback, so leave the cell as-is rather than guess
		return
	}
	base := layers.Layer(0)

	stats.Base.Lookups++
	if cached, ok := e.base.Get(base.ID()); ok {
		e.copyTile(cached, at)
		e.drawOverlays(at, layers, stats)
		return
	}
	stats.Base.Misses++

	var dec tile.Decoded
	decodeStart := time.Now()
	tile.Decode(&dec, base, false, e.ch0, e.ch1)
	stats.DecodeTime += time.Since(decodeStart)

	full := e.drawOpaqueTile(&dec, at)
	// a tile clipped only by the top edge is still safe to remember: the
	// cache is cleared before those rows are overwritten
	if (full || (at.X >= 0 && at.Y < 0)) && e.cacheEnabled {
		if !e.base.Insert(base.ID(), at) {
			stats.Base.InsertFailures++
		}
	}
	if layers.Len() > 1 {
		if len(e.pending) < maxDeferred {
			e.pending = append(e.pending, deferred{at: at, layers: layers})
		} else {
			// deferral is an optimisation; never a reason to drop layers
			e.drawOverlays(at, layers, stats)
		}
	}
}

// drawOverlays composites layers 1..n at screen coordinate at.
func (e *Engine) drawOverlays(at image.Point, layers worldmap.LayerSet, stats *FrameStats) {
	for i := 1; i < layers.Len(); i++ {
		ov := layers.Layer(i)

		stats.Overlay.Lookups++
		if dec, ok := e.overlay.Get(ov.ID()); ok {
			e.drawTransparentTile(dec, at)
			continue
		}
		stats.Overlay.Misses++

		dec := new(tile.Decoded)
		decodeStart := time.Now()
		tile.Decode(dec, ov, true, e.ch0, e.ch1)
		stats.DecodeTime += time.Since(decodeStart)

		e.drawTransparentTile(dec, at)
		if !e.overlay.Insert(ov.ID(), dec) {
			stats.Overlay.InsertFailures++
		}
	}
}
