package solver

import (
	"time"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/grid"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/shapes"
)

// PlacementSolver searches a grid for legal origins of hand blocks.
// Every origin is probed; nothing is pruned by shape size.
type PlacementSolver struct{}

func New() *PlacementSolver { return &PlacementSolver{} }

// Origins lists every origin where s can be placed, row-major.
func (p *PlacementSolver) Origins(g *grid.Grid, s domain.Shape) ([]domain.Coord, ports.Stats) {
	start := time.Now()
	nodes := 0
	var out []domain.Coord
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			nodes++
			if g.CanPlace(s, r, c) {
				out = append(out, domain.Coord{Row: r, Col: c})
			}
		}
	}
	return out, ports.Stats{Nodes: nodes, Duration: time.Since(start)}
}

// FirstFit returns the first legal origin for s.
func (p *PlacementSolver) FirstFit(g *grid.Grid, s domain.Shape) (domain.Coord, bool, ports.Stats) {
	start := time.Now()
	nodes := 0
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			nodes++
			if g.CanPlace(s, r, c) {
				return domain.Coord{Row: r, Col: c}, true, ports.Stats{Nodes: nodes, Duration: time.Since(start)}
			}
		}
	}
	return domain.Coord{}, false, ports.Stats{Nodes: nodes, Duration: time.Since(start)}
}

// Move is one legal placement of a hand slot.
type Move struct {
	Slot    int
	Origin  domain.Coord
	Rotated bool
}

// FirstMove checks every unplaced block in slot order, trying the current
// orientation and, when withRotation is set, the clockwise rotation. A block
// without any fit does not stop the search; the next block is checked.
func (p *PlacementSolver) FirstMove(g *grid.Grid, blocks []domain.Block, withRotation bool) (Move, bool, ports.Stats) {
	var total ports.Stats
	start := time.Now()
	for i, b := range blocks {
		if b.Placed {
			continue
		}
		at, ok, st := p.FirstFit(g, b.Shape)
		total.Nodes += st.Nodes
		if ok {
			total.Duration = time.Since(start)
			return Move{Slot: i, Origin: at}, true, total
		}
		if !withRotation {
			continue
		}
		at, ok, st = p.FirstFit(g, shapes.Rotate(b.Shape))
		total.Nodes += st.Nodes
		if ok {
			total.Duration = time.Since(start)
			return Move{Slot: i, Origin: at, Rotated: true}, true, total
		}
	}
	total.Duration = time.Since(start)
	return Move{}, false, total
}

// AnyFit reports whether some unplaced block has a legal origin.
func (p *PlacementSolver) AnyFit(g *grid.Grid, blocks []domain.Block, withRotation bool) (bool, ports.Stats) {
	_, ok, st := p.FirstMove(g, blocks, withRotation)
	return ok, st
}
