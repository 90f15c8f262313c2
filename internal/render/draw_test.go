package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottmarv/gotile/internal/display"
	"github.com/ottmarv/gotile/internal/tile"
	"github.com/ottmarv/gotile/internal/worldmap"
)

func TestDrawFrameMatchesReference(t *testing.T) {
	src := testMap(t)

	for _, viewport := range []image.Point{
		image.Pt(0, 0),                      // tile-aligned
		image.Pt(13, 37),                    // sub-tile offset in both axes
		image.Pt(tile.TileSize-1, 1),        // maximal horizontal offset
		image.Pt(2*tile.TileSize, tile.TileSize), // aligned, away from origin
	} {
		e, d := newTestEngine(t, src)
		e.DrawFrame(viewport, false)
		require.Equal(t, refRender(src, viewport), d.Framebuffer(),
			"viewport %v", viewport)
		e.Close()
	}
}

func TestDrawFrameWithFallbackSource(t *testing.T) {
	// a viewport hanging off the authored map: the fallback source must
	// keep every cell covered
	src := &worldmap.Fallback{
		Inner: testMap(t),
		Ocean: testAssets.solids,
	}
	e, d := newTestEngine(t, src)
	viewport := image.Pt(6*tile.TileSize+5, 7*tile.TileSize+19)
	e.DrawFrame(viewport, false)
	assert.Equal(t, refRender(src, viewport), d.Framebuffer())
}

func TestBaseCacheEquivalence(t *testing.T) {
	// the screen-copy fast path must be pixel-identical to decoding and
	// blitting every cell directly
	src := testMap(t)
	viewport := image.Pt(9, 21)

	cached, cfb := newTestEngine(t, src)
	cached.DrawFrame(viewport, false)

	direct, dfb := newTestEngine(t, src, WithoutBaseCache(), WithChannels(3, 4))
	direct.DrawFrame(viewport, false)

	assert.Equal(t, dfb.Framebuffer(), cfb.Framebuffer())
}

func TestDrawFrameCacheCounters(t *testing.T) {
	// one unique base tile everywhere: a single decode, then hits
	table := testAssets.solids[:1]
	m := worldmap.NewStaticMap(8, table)
	for cy := 0; cy < 8; cy++ {
		for cx := 0; cx < 8; cx++ {
			require.NoError(t, m.SetCell(cx, cy, 0))
		}
	}

	e, _ := newTestEngine(t, m)
	stats := e.DrawFrame(image.Pt(0, 0), false)

	assert.Equal(t, 64, stats.Base.Lookups, "8x8 visible cells")
	assert.Equal(t, 1, stats.Base.Misses)
	assert.Zero(t, stats.Base.InsertFailures)
	assert.Zero(t, stats.Overlay.Lookups)
}

func TestDrawFrameSlowDrawWithInstantTransport(t *testing.T) {
	// an instant transport is indistinguishable from a renderer lagging
	// far behind transmission, so the advisory flag trips
	e, _ := newTestEngine(t, testMap(t))
	stats := e.DrawFrame(image.Pt(0, 0), false)
	assert.True(t, stats.SlowDraw)
}

func TestGateOpen(t *testing.T) {
	rowPixels := display.Width

	// safe row 10, drawn row 0: must wait
	assert.False(t, gateOpen(10*rowPixels+rowPixels-1, 0))
	// still short of one full row group ahead
	assert.False(t, gateOpen(31*rowPixels+rowPixels-1, 0))
	// safe row 32: exactly one row group ahead, may draw
	assert.True(t, gateOpen(32*rowPixels+rowPixels-1, 0))
	// deeper into the frame the same distance rule applies
	assert.False(t, gateOpen(63*rowPixels+rowPixels-1, 32))
	assert.True(t, gateOpen(64*rowPixels+rowPixels-1, 32))
	// a fully transmitted frame never gates
	assert.True(t, gateOpen(display.Width*display.Height, 200))
	// nothing transmitted yet
	assert.False(t, gateOpen(0, 0))
}

func TestConsumerFarAhead(t *testing.T) {
	rowPixels := display.Width
	assert.False(t, consumerFarAhead(64*rowPixels+rowPixels-1, 0))
	assert.True(t, consumerFarAhead(65*rowPixels+rowPixels-1, 0))
}

// stallTransport reports a stalled link for a fixed number of polls, then
// an instantly completed frame. It counts polls so tests can prove the
// renderer actually waited.
type stallTransport struct {
	stalled int
	polls   int
}

func (s *stallTransport) Flush([]uint16) {}

func (s *stallTransport) Progress() int {
	s.polls++
	if s.polls <= s.stalled {
		return 10*display.Width + display.Width - 1 // safe row stuck at 10
	}
	return display.Width * display.Height
}

func TestDrawFrameWaitsForTransmission(t *testing.T) {
	tr := &stallTransport{stalled: 500}
	d := display.New(tr)
	e, err := New(d, testMap(t), WithChannels(5, 6))
	require.NoError(t, err)
	defer e.Close()

	e.DrawFrame(image.Pt(0, 0), false)

	assert.Greater(t, tr.polls, 500,
		"the first row group must not be drawn while the safe row is 10")
	assert.Equal(t, refRender(testMap(t), image.Pt(0, 0)), d.Framebuffer(),
		"waiting must not change what gets drawn")
}

// creepTransport advances the safe row a little on every poll, so the
// renderer is gated group by group instead of all at once.
type creepTransport struct {
	progress int
}

func (c *creepTransport) Flush([]uint16) {}

func (c *creepTransport) Progress() int {
	c.progress += display.Width * 3 // three rows per poll
	if c.progress > display.Width*display.Height {
		c.progress = display.Width * display.Height
	}
	return c.progress
}

func TestDrawFramePacedByCreepingConsumer(t *testing.T) {
	src := testMap(t)
	d := display.New(&creepTransport{})
	e, err := New(d, src, WithChannels(5, 6))
	require.NoError(t, err)
	defer e.Close()

	stats := e.DrawFrame(image.Pt(3, 3), false)

	assert.False(t, stats.SlowDraw,
		"a consumer kept within two row groups must not flag a slow draw")
	assert.Equal(t, refRender(src, image.Pt(3, 3)), d.Framebuffer())
}

func TestOverlayCachePressure(t *testing.T) {
	// more distinct overlays per frame than the overlay cache holds:
	// inserts fail, output is still correct
	table := []*tile.Asset{testAssets.solids[0]}
	table = append(table, testAssets.overlays...)
	m := worldmap.NewStaticMap(8, table)
	for cy := 0; cy < 8; cy++ {
		for cx := 0; cx < 8; cx++ {
			require.NoError(t, m.SetCell(cx, cy, 0, 1+(cx+cy*8)%len(testAssets.overlays)))
		}
	}

	e, d := newTestEngine(t, m)
	e.DrawFrame(image.Pt(0, 0), false)
	assert.Equal(t, refRender(m, image.Pt(0, 0)), d.Framebuffer())
}
