package shapes

import (
	"math/rand/v2"

	"svw.info/blockpuzzle/internal/domain"
)

// catalog holds the fixed pieces, written as 0/1 rows for readability.
var catalog = [][][]int{
	{{1}},
	{{1, 1}},
	{{1}, {1}},
	{{1, 1, 1}},
	{{1}, {1}, {1}},
	{{1, 1}, {1, 1}},
	{{1, 1, 1}, {0, 1, 0}},   // T
	{{1, 1, 0}, {0, 1, 1}},   // Z
	{{0, 1, 1}, {1, 1, 0}},   // S
	{{1, 0}, {1, 0}, {1, 1}}, // L
	{{0, 1}, {0, 1}, {1, 1}}, // J
}

// Len is the number of catalog shapes.
func Len() int { return len(catalog) }

// At returns a fresh copy of catalog shape i.
func At(i int) domain.Shape {
	src := catalog[i]
	out := make(domain.Shape, len(src))
	for r, row := range src {
		out[r] = make([]bool, len(row))
		for c, v := range row {
			out[r][c] = v == 1
		}
	}
	return out
}

// Catalog returns copies of every shape.
func Catalog() []domain.Shape {
	out := make([]domain.Shape, len(catalog))
	for i := range catalog {
		out[i] = At(i)
	}
	return out
}

// Random picks a catalog shape uniformly.
func Random(rng *rand.Rand) domain.Shape {
	return At(rng.IntN(len(catalog)))
}

// Rotate turns an R×C shape 90° clockwise into a C×R shape:
// new[c][R-1-r] = old[r][c].
func Rotate(s domain.Shape) domain.Shape {
	rows, cols := s.Dims()
	out := make(domain.Shape, cols)
	for c := range out {
		out[c] = make([]bool, rows)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[c][rows-1-r] = s[r][c]
		}
	}
	return out
}

// RotateCoord maps a cell of an R-row shape through Rotate.
func RotateCoord(p domain.Coord, rows int) domain.Coord {
	return domain.Coord{Row: p.Col, Col: rows - 1 - p.Row}
}

// Cells lists the occupied cells in row-major order.
func Cells(s domain.Shape) []domain.Coord {
	var out []domain.Coord
	for r, row := range s {
		for c, v := range row {
			if v {
				out = append(out, domain.Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// Clone deep-copies a shape.
func Clone(s domain.Shape) domain.Shape {
	if s == nil {
		return nil
	}
	out := make(domain.Shape, len(s))
	for i, row := range s {
		out[i] = append([]bool(nil), row...)
	}
	return out
}

func Equal(a, b domain.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if len(a[r]) != len(b[r]) {
			return false
		}
		for c := range a[r] {
			if a[r][c] != b[r][c] {
				return false
			}
		}
	}
	return true
}
