package grid

import (
	"fmt"

	"github.com/kamstrup/intmap"

	"svw.info/blockpuzzle/internal/domain"
)

// Grid is the R×C playing field, stored row-major.
type Grid struct {
	rows, cols int
	cells      []domain.Cell
}

// New returns an empty grid.
func New(rows, cols int) *Grid {
	return &Grid{rows: rows, cols: cols, cells: make([]domain.Cell, rows*cols)}
}

// FromCells rebuilds a grid from a row-major cell slice.
func FromCells(rows, cols int, cells []domain.Cell) (*Grid, error) {
	if rows <= 0 || cols <= 0 || len(cells) != rows*cols {
		return nil, fmt.Errorf("%w: grid %dx%d with %d cells", domain.ErrInternalInconsistency, rows, cols, len(cells))
	}
	g := New(rows, cols)
	copy(g.cells, cells)
	return g, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

func (g *Grid) index(r, c int) int { return r*g.cols + c }

func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

// At returns the cell at (r,c); out of bounds reads as empty.
func (g *Grid) At(r, c int) domain.Cell {
	if !g.InBounds(r, c) {
		return domain.Cell{}
	}
	return g.cells[g.index(r, c)]
}

func (g *Grid) Filled(r, c int) bool { return g.At(r, c).Filled }

// Set overwrites a single cell; out of bounds is ignored.
func (g *Grid) Set(r, c int, cell domain.Cell) {
	if g.InBounds(r, c) {
		g.cells[g.index(r, c)] = cell
	}
}

// FilledCount returns the number of occupied cells.
func (g *Grid) FilledCount() int {
	n := 0
	for _, cell := range g.cells {
		if cell.Filled {
			n++
		}
	}
	return n
}

// CanPlace reports whether every occupied cell of s, placed with its top-left
// corner at (row,col), lands on an in-bounds empty cell.
func (g *Grid) CanPlace(s domain.Shape, row, col int) bool {
	for r, line := range s {
		for c, v := range line {
			if !v {
				continue
			}
			tr, tc := row+r, col+c
			if !g.InBounds(tr, tc) {
				return false
			}
			if g.cells[g.index(tr, tc)].Filled {
				return false
			}
		}
	}
	return true
}

// Place writes b into the grid. The marker flag is set on the cell that the
// block's marker maps to. Nothing is written if the placement is illegal.
func (g *Grid) Place(b domain.Block, row, col int) error {
	if !g.CanPlace(b.Shape, row, col) {
		return fmt.Errorf("%w: at (%d,%d)", domain.ErrInvalidPlacement, row, col)
	}
	for r, line := range b.Shape {
		for c, v := range line {
			if !v {
				continue
			}
			marker := b.Marker != nil && b.Marker.Row == r && b.Marker.Col == c
			g.cells[g.index(row+r, col+c)] = domain.Cell{Filled: true, Color: b.Color, Marker: marker}
		}
	}
	return nil
}

// DetectFullLines returns every full row and column, both measured against
// the current contents before any clearing.
func (g *Grid) DetectFullLines() domain.Lines {
	var out domain.Lines
	for r := 0; r < g.rows; r++ {
		full := true
		for c := 0; c < g.cols; c++ {
			if !g.cells[g.index(r, c)].Filled {
				full = false
				break
			}
		}
		if full {
			out.Rows = append(out.Rows, r)
		}
	}
	for c := 0; c < g.cols; c++ {
		full := true
		for r := 0; r < g.rows; r++ {
			if !g.cells[g.index(r, c)].Filled {
				full = false
				break
			}
		}
		if full {
			out.Cols = append(out.Cols, c)
		}
	}
	return out
}

// ClearedCells returns the coordinates covered by the given lines, each
// once, in row-major order of first appearance. Out-of-range indices are
// skipped.
func (g *Grid) ClearedCells(l domain.Lines) []domain.Coord {
	seen := intmap.NewSet[int](l.Count() * max(g.rows, g.cols))
	out := make([]domain.Coord, 0, l.Count()*max(g.rows, g.cols))
	add := func(r, c int) {
		i := g.index(r, c)
		if seen.Has(i) {
			return
		}
		seen.Add(i)
		out = append(out, domain.Coord{Row: r, Col: c})
	}
	for _, r := range l.Rows {
		if r < 0 || r >= g.rows {
			continue
		}
		for c := 0; c < g.cols; c++ {
			add(r, c)
		}
	}
	for _, c := range l.Cols {
		if c < 0 || c >= g.cols {
			continue
		}
		for r := 0; r < g.rows; r++ {
			add(r, c)
		}
	}
	return out
}

// Clear empties every cell of the selected rows and columns. Cells on an
// intersection are simply emptied once.
func (g *Grid) Clear(l domain.Lines) {
	for _, p := range g.ClearedCells(l) {
		g.cells[g.index(p.Row, p.Col)] = domain.Cell{}
	}
}

// ClearRadius empties the square of the given radius around center, clipped
// to the grid, regardless of occupancy. It returns the in-bounds cells it
// covered.
func (g *Grid) ClearRadius(center domain.Coord, radius int) []domain.Coord {
	var out []domain.Coord
	for r := center.Row - radius; r <= center.Row+radius; r++ {
		for c := center.Col - radius; c <= center.Col+radius; c++ {
			if !g.InBounds(r, c) {
				continue
			}
			g.cells[g.index(r, c)] = domain.Cell{}
			out = append(out, domain.Coord{Row: r, Col: c})
		}
	}
	return out
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	out := New(g.rows, g.cols)
	copy(out.cells, g.cells)
	return out
}

// Cells returns a row-major copy of all cells.
func (g *Grid) Cells() []domain.Cell {
	return append([]domain.Cell(nil), g.cells...)
}

// Matrix returns a copy shaped as rows of cells, for snapshots.
func (g *Grid) Matrix() [][]domain.Cell {
	out := make([][]domain.Cell, g.rows)
	for r := range out {
		out[r] = append([]domain.Cell(nil), g.cells[r*g.cols:(r+1)*g.cols]...)
	}
	return out
}
