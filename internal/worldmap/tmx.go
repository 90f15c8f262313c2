package worldmap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/ottmarv/gotile/internal/tile"
)

// Just enough of the Tiled TMX schema for the maps the asset pipeline
// emits: square maps, one tileset, CSV-encoded layers.
type tmxMap struct {
	XMLName   xml.Name   `xml:"map"`
	Width     int        `xml:"width,attr"`
	Height    int        `xml:"height,attr"`
	TileWidth int        `xml:"tilewidth,attr"`
	Layers    []tmxLayer `xml:"layer"`
}

type tmxLayer struct {
	Name string  `xml:"name,attr"`
	Data tmxData `xml:"data"`
}

type tmxData struct {
	Encoding string `xml:"encoding,attr"`
	Text     string `xml:",chardata"`
}

// LoadTMX parses a Tiled map export and resolves its global tile IDs
// against the given tile table. Gid 1 maps to tiles[0], the single-tileset
// convention the bake pipeline produces; gid 0 is an empty cell.
func LoadTMX(r io.Reader, tiles []*tile.Asset) (*StaticMap, error) {
	var m tmxMap
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("worldmap: parse tmx: %w", err)
	}
	if m.Width != m.Height {
		return nil, fmt.Errorf("worldmap: map must be square, got %dx%d", m.Width, m.Height)
	}
	if m.TileWidth != tile.TileSize {
		return nil, fmt.Errorf("worldmap: map tile width %d, engine renders %d", m.TileWidth, tile.TileSize)
	}
	if len(m.Layers) == 0 || len(m.Layers) > MaxLayers {
		return nil, fmt.Errorf("worldmap: %d layers, want 1..%d", len(m.Layers), MaxLayers)
	}

	sm := NewStaticMap(m.Width, tiles)
	for li, l := range m.Layers {
		if l.Data.Encoding != "csv" {
			return nil, fmt.Errorf("worldmap: layer %q: unsupported encoding %q", l.Name, l.Data.Encoding)
		}
		fields := strings.FieldsFunc(l.Data.Text, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		if len(fields) != m.Width*m.Height {
			return nil, fmt.Errorf("worldmap: layer %q: %d cells, want %d", l.Name, len(fields), m.Width*m.Height)
		}
		for i, f := range fields {
			gid, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("worldmap: layer %q cell %d: %w", l.Name, i, err)
			}
			if gid == 0 {
				continue
			}
			if gid < 0 || gid > len(tiles) {
				return nil, fmt.Errorf("worldmap: layer %q cell %d: gid %d outside tile table of %d", l.Name, i, gid, len(tiles))
			}
			sm.cells[i][li] = int32(gid - 1)
		}
	}
	return sm, nil
}
