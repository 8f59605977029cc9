// Package landmask resolves geographic positions against a rasterized land
// mask and implements the land-crossing predicate the encounter search
// consults before accepting a candidate track.
package landmask

import (
	"fmt"
	"math"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/seawaysim/traffic-generator/core"
	"github.com/seawaysim/traffic-generator/model"
)

// pathSamples is the number of equally spaced points checked along a
// candidate track.
const pathSamples = 10

// cacheSize bounds the lookup cache. Candidate tracks within one generation
// run cluster around the own ship, so a small cache absorbs most lookups.
const cacheSize = 4096

// Grid is a latitude/longitude raster where each cell is land or water.
// Cell (0,0) covers the south-west corner; the grid is row-major with one bit
// per cell. Coordinates in the grid header are degrees.
type Grid struct {
	MinLat  float64
	MinLon  float64
	LatStep float64
	LonStep float64
	Rows    int
	Cols    int
	Bits    []byte

	cache *lru.Cache[int, bool]
}

// gridPayload is the on-disk shape of a land mask file: a gzip stream framing
// a msgpack document.
type gridPayload struct {
	MinLat  float64 `msgpack:"min_lat"`
	MinLon  float64 `msgpack:"min_lon"`
	LatStep float64 `msgpack:"lat_step"`
	LonStep float64 `msgpack:"lon_step"`
	Rows    int     `msgpack:"rows"`
	Cols    int     `msgpack:"cols"`
	Bits    []byte  `msgpack:"bits"`
}

// NewGrid builds a grid from in-memory data. bits must hold at least
// rows*cols bits, row-major from the south-west corner.
func NewGrid(minLat, minLon, latStep, lonStep float64, rows, cols int, bits []byte) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("landmask: grid must have positive dimensions, got %dx%d", rows, cols)
	}
	if latStep <= 0 || lonStep <= 0 {
		return nil, fmt.Errorf("landmask: grid steps must be positive")
	}
	if need := (rows*cols + 7) / 8; len(bits) < need {
		return nil, fmt.Errorf("landmask: grid needs %d bytes of cell data, got %d", need, len(bits))
	}

	cache, err := lru.New[int, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("landmask: create lookup cache: %w", err)
	}

	return &Grid{
		MinLat:  minLat,
		MinLon:  minLon,
		LatStep: latStep,
		LonStep: lonStep,
		Rows:    rows,
		Cols:    cols,
		Bits:    bits,
		cache:   cache,
	}, nil
}

// Load reads a land mask file: a gzip-compressed msgpack grid.
func Load(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("landmask: open %q: %w", path, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("landmask: read %q: %w", path, err)
	}
	defer zr.Close()

	var payload gridPayload
	if err := msgpack.NewDecoder(zr).Decode(&payload); err != nil {
		return nil, fmt.Errorf("landmask: decode %q: %w", path, err)
	}

	return NewGrid(payload.MinLat, payload.MinLon, payload.LatStep, payload.LonStep,
		payload.Rows, payload.Cols, payload.Bits)
}

// IsLand reports whether the cell containing the given geodetic position is
// land. Positions outside the grid resolve to water, matching the behaviour
// of a mask that only covers coastal regions of interest.
func (g *Grid) IsLand(pos model.GeoPosition) bool {
	latDeg := pos.Latitude * 180 / math.Pi
	lonDeg := pos.Longitude * 180 / math.Pi

	row := int(math.Floor((latDeg - g.MinLat) / g.LatStep))
	col := int(math.Floor((lonDeg - g.MinLon) / g.LonStep))
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return false
	}

	cell := row*g.Cols + col
	if cached, ok := g.cache.Get(cell); ok {
		return cached
	}

	land := g.Bits[cell/8]&(1<<uint(cell%8)) != 0
	g.cache.Add(cell, land)
	return land
}

// PathCrossesLand samples equally spaced points along a constant-course track
// over the given horizon and reports whether any of them resolves to land.
// It implements core.LandChecker.
func (g *Grid) PathCrossesLand(pos model.GeoPosition, speed, course float64, ref model.GeoPosition, horizonSeconds float64) bool {
	for i := 0; i < pathSamples; i++ {
		t := horizonSeconds * float64(i) / pathSamples
		sample := core.PositionAtTime(pos, ref, speed, course, t)
		if g.IsLand(sample) {
			return true
		}
	}
	return false
}
