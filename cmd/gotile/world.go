package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ottmarv/gotile/internal/atlas"
	"github.com/ottmarv/gotile/internal/tile"
	"github.com/ottmarv/gotile/internal/worldmap"
)

// loadWorld reads an asset pack and a Tiled map, wiring the authored map
// over a hashed ocean filler so scrolling past the edges stays covered.
func loadWorld(packPath, mapPath, ocean string) (worldmap.Source, error) {
	pf, err := os.Open(packPath)
	if err != nil {
		return nil, err
	}
	pack, err := atlas.ReadPack(pf)
	pf.Close()
	if err != nil {
		return nil, fmt.Errorf("reading pack %s: %w", packPath, err)
	}

	mf, err := os.Open(mapPath)
	if err != nil {
		return nil, err
	}
	defer mf.Close()
	m, err := worldmap.LoadTMX(mf, pack.Tiles)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", mapPath, err)
	}

	oceanTiles, err := parseOcean(ocean, pack.Tiles)
	if err != nil {
		return nil, err
	}
	return &worldmap.Fallback{Inner: m, Ocean: oceanTiles}, nil
}

// parseOcean resolves a comma-separated list of pack indices to assets.
func parseOcean(s string, tiles []*tile.Asset) ([]*tile.Asset, error) {
	if s == "" {
		return nil, nil
	}
	var out []*tile.Asset
	for _, part := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || i < 0 || i >= len(tiles) {
			return nil, fmt.Errorf("ocean tile %q is not a pack index", part)
		}
		out = append(out, tiles[i])
	}
	return out, nil
}
