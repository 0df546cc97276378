package hint

import (
	"context"
	"fmt"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/grid"
	"svw.info/blockpuzzle/internal/solver"
)

// Finder implements a minimal Hinter that points at the first block that
// fits somewhere, trying a rotation only when the rotate power-up is ready.
type Finder struct {
	solver *solver.PlacementSolver
}

func NewFinder() *Finder { return &Finder{solver: solver.New()} }

// Hint returns a legal placement for the snapshot, or false when nothing in
// the hand fits.
func (f *Finder) Hint(ctx context.Context, s domain.Snapshot) (domain.Hint, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Hint{}, false, err
	}
	if s.Outcome.Terminal() {
		return domain.Hint{}, false, nil
	}
	g, err := fromMatrix(s.Rows, s.Cols, s.Grid)
	if err != nil {
		return domain.Hint{}, false, err
	}
	m, ok, _ := f.solver.FirstMove(g, s.Hand, s.PowerUp(domain.Rotate).Ready())
	if !ok {
		return domain.Hint{}, false, nil
	}
	return domain.Hint{Slot: m.Slot, Origin: m.Origin, Rotated: m.Rotated}, true, nil
}

func fromMatrix(rows, cols int, m [][]domain.Cell) (*grid.Grid, error) {
	if len(m) != rows {
		return nil, fmt.Errorf("%w: snapshot has %d rows, want %d", domain.ErrInternalInconsistency, len(m), rows)
	}
	flat := make([]domain.Cell, 0, rows*cols)
	for _, line := range m {
		flat = append(flat, line...)
	}
	return grid.FromCells(rows, cols, flat)
}
