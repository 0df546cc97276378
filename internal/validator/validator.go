package validator

import (
	"fmt"

	"svw.info/blockpuzzle/internal/domain"
)

// Check validates the structural invariants of a snapshot. Every returned
// error wraps domain.ErrInternalInconsistency; an empty result means the
// snapshot is consistent.
func Check(s domain.Snapshot) []error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrInternalInconsistency}, args...)...))
	}

	if s.Rows <= 0 || s.Cols <= 0 {
		bad("grid %dx%d", s.Rows, s.Cols)
	}
	if len(s.Grid) != s.Rows {
		bad("grid has %d rows, want %d", len(s.Grid), s.Rows)
	}
	for r, line := range s.Grid {
		if len(line) != s.Cols {
			bad("row %d has %d cells, want %d", r, len(line), s.Cols)
		}
		for c, cell := range line {
			if cell.Marker && !cell.Filled {
				bad("marker on empty cell (%d,%d)", r, c)
			}
		}
	}

	if len(s.Hand) == 0 {
		bad("empty hand")
	}
	allPlaced := len(s.Hand) > 0
	for i, b := range s.Hand {
		if len(b.Shape) == 0 {
			bad("slot %d has no shape", i)
			continue
		}
		_, cols := b.Shape.Dims()
		filled := 0
		for r, line := range b.Shape {
			if len(line) != cols {
				bad("slot %d shape row %d is ragged", i, r)
			}
			for _, v := range line {
				if v {
					filled++
				}
			}
		}
		if filled == 0 {
			bad("slot %d shape is empty", i)
		}
		if b.Marker != nil && !b.Shape.Occupied(*b.Marker) {
			bad("slot %d marker %v off the shape", i, *b.Marker)
		}
		if !b.Placed {
			allPlaced = false
		}
	}
	if allPlaced && s.Outcome == domain.InProgress {
		bad("every slot placed but hand not refilled")
	}

	seen := map[domain.PowerUpKind]bool{}
	for _, p := range s.PowerUps {
		switch p.Kind {
		case domain.Shuffle, domain.Rotate, domain.Bomb:
		default:
			bad("unknown power-up %d", int(p.Kind))
			continue
		}
		if seen[p.Kind] {
			bad("duplicate power-up %s", p.Kind)
		}
		seen[p.Kind] = true
		if p.Readiness < 0 || p.Readiness > 1 {
			bad("%s readiness %v out of range", p.Kind, p.Readiness)
		}
	}
	if len(seen) != len(domain.PowerUpKinds) {
		bad("%d power-ups, want %d", len(seen), len(domain.PowerUpKinds))
	}
	if s.Armed != domain.PowerUpNone {
		if !s.Armed.Aimable() {
			bad("%s cannot be armed", s.Armed)
		} else if !s.PowerUp(s.Armed).Ready() {
			bad("%s armed but not ready", s.Armed)
		}
		if s.Outcome.Terminal() {
			bad("%s armed after the game ended", s.Armed)
		}
	}

	if s.Score < 0 || s.LinesCleared < 0 {
		bad("negative totals score=%d lines=%d", s.Score, s.LinesCleared)
	}
	if s.LevelProgress < 0 || s.LevelProgress > 1 {
		bad("level progress %v out of range", s.LevelProgress)
	}
	if s.Outcome == domain.Won && s.LevelProgress < 1 {
		bad("won at level progress %v", s.LevelProgress)
	}
	if s.Outcome == domain.Won && s.Mode == domain.ModeCoins {
		bad("coin mode has no win condition")
	}
	return errs
}
