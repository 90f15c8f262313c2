// Package worldmap resolves world coordinates to the tile layers covering
// them.
//
// A Source is the renderer's only view of the map: a pure function from a
// tile-grid-aligned world coordinate to an ordered stack of tile assets.
// Layer 0 is the opaque base tile; higher layers are transparent overlays
// composited on top in order.
package worldmap

import (
	"image"

	"github.com/ottmarv/gotile/internal/tile"
)

// MaxLayers bounds the number of stacked tiles per map cell.
const MaxLayers = 3

// LayerSet is the ordered, bounded tile stack for one map cell. The zero
// value is the empty set, meaning no authored coverage.
type LayerSet struct {
	layers [MaxLayers]*tile.Asset
	n      int
}

// MakeLayerSet builds a set from at most MaxLayers assets.
func MakeLayerSet(assets ...*tile.Asset) LayerSet {
	var s LayerSet
	for _, a := range assets {
		s.Push(a)
	}
	return s
}

// Push appends a layer, reporting false when the set is full.
func (s *LayerSet) Push(a *tile.Asset) bool {
	if s.n == MaxLayers {
		return false
	}
	s.layers[s.n] = a
	s.n++
	return true
}

// Len returns the number of layers.
func (s LayerSet) Len() int { return s.n }

// Layer returns layer i.
func (s LayerSet) Layer(i int) *tile.Asset { return s.layers[i] }

// Source resolves a world coordinate to the layers covering its map cell.
// Implementations must be pure: the renderer calls Resolve once per visible
// cell per frame and assumes identical answers within a frame.
type Source interface {
	Resolve(p image.Point) LayerSet
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(p image.Point) LayerSet

// Resolve calls f.
func (f SourceFunc) Resolve(p image.Point) LayerSet { return f(p) }
