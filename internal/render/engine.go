// Package render draws tile maps into the shared framebuffer, paced
// against the display's transmission of the previous frame.
//
// The engine keeps two per-frame caches. The base cache remembers where an
// opaque tile's pixels already landed on screen so a later occurrence can
// be satisfied with a cheap screen-to-screen copy instead of a redecode.
// The overlay cache keeps whole decoded transparent tiles, which must be
// recomposited wherever they appear and so cannot be reused by location.
package render

import (
	"image"

	"github.com/ottmarv/gotile/internal/display"
	"github.com/ottmarv/gotile/internal/dma"
	"github.com/ottmarv/gotile/internal/tile"
	"github.com/ottmarv/gotile/internal/worldmap"
	"github.com/ottmarv/gotile/pkg/log"
)

const (
	// baseCacheSlots bounds the tile id -> screen coordinate table.
	baseCacheSlots = 64
	// overlayCacheSlots bounds the decoded overlay table. Deliberately
	// small: each entry carries a full pixel grid and overlays are rare.
	overlayCacheSlots = 4
	// maxDeferred bounds the per-frame list of base-miss cells whose
	// overlays are composited after the row loop.
	maxDeferred = 64
)

// Engine renders one frame per DrawFrame call. It owns two DMA channels
// for the duration of its life.
type Engine struct {
	d   *display.Display
	src worldmap.Source
	log log.Logger

	ch0, ch1     *dma.Channel
	ch0n, ch1n   int
	cacheEnabled bool

	base    *linearMap[tile.ID, image.Point]
	overlay *linearMap[tile.ID, *tile.Decoded]
	pending []deferred
}

type deferred struct {
	at     image.Point
	layers worldmap.LayerSet
}

// Opt configures an Engine.
type Opt func(*Engine)

// WithLogger directs the engine's diagnostics to l.
func WithLogger(l log.Logger) Opt {
	return func(e *Engine) { e.log = l }
}

// WithoutBaseCache disables screen-copy reuse of base tiles; every cell is
// decoded and blitted directly. Rendering output is identical, only slower.
func WithoutBaseCache() Opt {
	return func(e *Engine) { e.cacheEnabled = false }
}

// WithChannels selects which DMA channels the engine claims.
func WithChannels(a, b int) Opt {
	return func(e *Engine) { e.ch0n, e.ch1n = a, b }
}

// New builds an engine over d, resolving map cells through src. The two
// DMA channels are claimed here and held until Close.
func New(d *display.Display, src worldmap.Source, opts ...Opt) (*Engine, error) {
	e := &Engine{
		d:            d,
		src:          src,
		log:          log.NewNullLogger(),
		ch0n:         1,
		ch1n:         2,
		cacheEnabled: true,
		base:         newLinearMap[tile.ID, image.Point](baseCacheSlots),
		overlay:      newLinearMap[tile.ID, *tile.Decoded](overlayCacheSlots),
		pending:      make([]deferred, 0, maxDeferred),
	}
	for _, o := range opts {
		o(e)
	}

	var err error
	if e.ch0, err = dma.Claim(e.ch0n); err != nil {
		return nil, err
	}
	if e.ch1, err = dma.Claim(e.ch1n); err != nil {
		e.ch0.Release()
		return nil, err
	}
	return e, nil
}

// Close releases the engine's DMA channels.
func (e *Engine) Close() {
	e.ch0.Release()
	e.ch1.Release()
}
