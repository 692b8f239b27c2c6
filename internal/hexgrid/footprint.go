package hexgrid

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// NewHexagon adds a hexagon of the given radius at one tier, stacked over
// layers, and returns the added cells in address order.
func (g *Grid) NewHexagon(center Axial, radius, tier, layers int) []*Cell {
	if layers < 1 {
		layers = 1
	}
	var out []*Cell
	for l := 0; l < layers; l++ {
		for _, a := range Disk(center, radius) {
			out = append(out, g.AddCell(a, tier, l))
		}
	}
	SortCells(out)
	return out
}

// Subdivide adds the finer-tier children of every cell on tier, down to
// tier-depth. Corner-shared children are created once.
func (g *Grid) Subdivide(tier, depth int) {
	for d := 0; d < depth; d++ {
		t := tier - d
		for _, parent := range g.TierCells(t) {
			for _, cc := range ChildCoords(parent.Address.Coord) {
				g.AddCell(cc, t-1, parent.Address.Layer)
			}
		}
	}
}

// FootprintOptions controls NoiseFootprint.
type FootprintOptions struct {
	Center    Axial
	Radius    int
	Tier      int
	MaxLayers int
	Seed      int64
	// Scale is the noise frequency per world unit.
	Scale float64
	// Cutoff drops columns whose noise value falls below it (0..1).
	Cutoff float64
}

// Perlin parameters, same octave setup the world generator uses.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = int32(3)
)

// NoiseFootprint adds a hexagonal footprint whose per-column stack height
// follows 2D Perlin noise. Columns below Cutoff are left out entirely. The
// same options always produce the same footprint.
func (g *Grid) NoiseFootprint(opts FootprintOptions) []*Cell {
	if opts.MaxLayers < 1 {
		opts.MaxLayers = 1
	}
	if opts.Scale <= 0 {
		opts.Scale = 0.15
	}
	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, opts.Seed)
	size := TierSize(g.BaseSize, opts.Tier)

	var out []*Cell
	for _, a := range Disk(opts.Center, opts.Radius) {
		p := AxialToPixel(a, size)
		v := (noise.Noise2D(p.X*opts.Scale, p.Y*opts.Scale) + 1) / 2
		if a != opts.Center && v < opts.Cutoff {
			continue
		}
		height := 1 + int(math.Floor(clamp01(v)*float64(opts.MaxLayers)))
		if height > opts.MaxLayers {
			height = opts.MaxLayers
		}
		for l := 0; l < height; l++ {
			out = append(out, g.AddCell(a, opts.Tier, l))
		}
	}
	SortCells(out)
	return out
}

// Build resolves links with the default tolerance and classifies edges.
func (g *Grid) Build(scopeToParent bool) {
	g.ResolveNeighbors(DefaultTolerance)
	g.ClassifyEdges(scopeToParent)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
