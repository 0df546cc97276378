package generator

import (
	"math/rand/v2"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/shapes"
)

// RandomGenerator draws catalog shapes and palette colors from a seeded PCG
// source. Its state can be saved and restored so a resumed session keeps
// drawing the same sequence.
type RandomGenerator struct {
	src        *rand.PCG
	rng        *rand.Rand
	colors     int
	markerProb float64
}

// NewRandomGenerator wires a generator over a palette of the given size. With
// probability markerProb each block carries a marker on one of its cells.
func NewRandomGenerator(seed uint64, colors int, markerProb float64) *RandomGenerator {
	if colors < 1 {
		colors = 1
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &RandomGenerator{
		src:        src,
		rng:        rand.New(src),
		colors:     colors,
		markerProb: markerProb,
	}
}

// Block returns a new unplaced block.
func (g *RandomGenerator) Block() domain.Block {
	b := domain.Block{
		Shape: shapes.Random(g.rng),
		Color: domain.ColorID(g.rng.IntN(g.colors)),
	}
	if g.markerProb > 0 && g.rng.Float64() < g.markerProb {
		cells := shapes.Cells(b.Shape)
		if len(cells) > 0 {
			m := cells[g.rng.IntN(len(cells))]
			b.Marker = &m
		}
	}
	return b
}

func (g *RandomGenerator) MarshalBinary() ([]byte, error) { return g.src.MarshalBinary() }

func (g *RandomGenerator) UnmarshalBinary(data []byte) error { return g.src.UnmarshalBinary(data) }
