package worldmap

import (
	"fmt"
	"image"

	"github.com/ottmarv/gotile/internal/tile"
)

// noTile marks an unused layer slot in a cell.
const noTile = -1

// StaticMap is a Source backed by an authored square cell grid. Cells store
// indices into a shared tile table; coordinates outside the grid resolve to
// the empty set.
type StaticMap struct {
	size  int // cells per side
	tiles []*tile.Asset
	cells [][MaxLayers]int32
}

// NewStaticMap returns an empty size-by-size map over the given tile table.
func NewStaticMap(size int, tiles []*tile.Asset) *StaticMap {
	m := &StaticMap{
		size:  size,
		tiles: tiles,
		cells: make([][MaxLayers]int32, size*size),
	}
	for i := range m.cells {
		for l := range m.cells[i] {
			m.cells[i][l] = noTile
		}
	}
	return m
}

// Size returns the number of cells per side.
func (m *StaticMap) Size() int { return m.size }

// SetCell assigns tile-table indices to a cell's layers, bottom-up.
func (m *StaticMap) SetCell(cx, cy int, layers ...int) error {
	if cx < 0 || cy < 0 || cx >= m.size || cy >= m.size {
		return fmt.Errorf("worldmap: cell (%d,%d) outside %dx%d map", cx, cy, m.size, m.size)
	}
	if len(layers) > MaxLayers {
		return fmt.Errorf("worldmap: %d layers exceeds limit of %d", len(layers), MaxLayers)
	}
	cell := &m.cells[cx+cy*m.size]
	for l := range cell {
		cell[l] = noTile
	}
	for l, ti := range layers {
		if ti < 0 || ti >= len(m.tiles) {
			return fmt.Errorf("worldmap: tile index %d outside table of %d", ti, len(m.tiles))
		}
		cell[l] = int32(ti)
	}
	return nil
}

// Resolve implements Source. p is a world pixel coordinate aligned to the
// tile grid by the caller; any coordinate within the cell works.
func (m *StaticMap) Resolve(p image.Point) LayerSet {
	if p.X < 0 || p.Y < 0 {
		return LayerSet{}
	}
	cx, cy := p.X/tile.TileSize, p.Y/tile.TileSize
	if cx >= m.size || cy >= m.size {
		return LayerSet{}
	}

	var s LayerSet
	for _, ti := range m.cells[cx+cy*m.size] {
		if ti == noTile {
			continue
		}
		s.Push(m.tiles[ti])
	}
	return s
}
