// Package display owns the shared framebuffer and its relationship to the
// transmission hardware.
//
// There is a single framebuffer: while the renderer writes the next frame
// into it, the transport is still draining the previous frame out of it,
// row by row. The two never collide because the renderer paces itself
// against FlushProgress (see internal/render), not because of any locking
// here.
package display

import (
	"image"
	"time"
)

const (
	// Width is the display width in pixels.
	Width = 240
	// Height is the display height in pixels.
	Height = 240
)

// Transport drains rendered frames to the physical screen. Flush hands the
// framebuffer over at a frame boundary and restarts the progress counter;
// Progress reports how many pixels of that frame have been transmitted so
// far and is monotonically non-decreasing between flushes.
type Transport interface {
	Flush(fb []uint16)
	Progress() int
}

// Display couples the framebuffer to a transport.
type Display struct {
	fb []uint16
	t  Transport
}

// New returns a display backed by a zeroed framebuffer.
func New(t Transport) *Display {
	return &Display{
		fb: make([]uint16, Width*Height),
		t:  t,
	}
}

// Framebuffer exposes the shared pixel buffer, addressed x + y*Width.
func (d *Display) Framebuffer() []uint16 { return d.fb }

// Bounds returns the visible pixel rectangle.
func (d *Display) Bounds() image.Rectangle { return image.Rect(0, 0, Width, Height) }

// Flush hands the current frame to the transport.
func (d *Display) Flush() { d.t.Flush(d.fb) }

// FlushProgress reports how many pixels of the previous frame have been
// transmitted. Non-blocking.
func (d *Display) FlushProgress() int { return d.t.Progress() }

// NopTransport transmits instantly: progress always reports a complete
// frame. Used for offline rendering and most tests, where there is no
// previous frame to race against.
type NopTransport struct{}

func (NopTransport) Flush([]uint16) {}

func (NopTransport) Progress() int { return Width * Height }

// PacedTransport simulates a fixed-rate serial link by deriving progress
// from the wall-clock time since the last flush. It lets the renderer's
// pacing behave as it would against real transmission hardware without
// any background goroutine.
type PacedTransport struct {
	// PixelsPerSecond is the simulated link rate. The hardware this
	// models pushes roughly one megapixel per second.
	PixelsPerSecond int

	flushed time.Time
}

func (t *PacedTransport) Flush([]uint16) { t.flushed = time.Now() }

func (t *PacedTransport) Progress() int {
	if t.flushed.IsZero() {
		return Width * Height
	}
	p := int(time.Since(t.flushed).Seconds() * float64(t.PixelsPerSecond))
	if p > Width*Height {
		p = Width * Height
	}
	return p
}
