package powerup

import "svw.info/blockpuzzle/internal/domain"

// Frozen never grants readiness; power-ups only come back on reset.
type Frozen struct{}

func (Frozen) Gain(domain.PowerUpKind, int) float64 { return 0 }

// Steady grants a fixed amount per placement plus a bonus per cleared line,
// for every kind.
type Steady struct {
	PerPlacement float64
	PerLine      float64
}

func (s Steady) Gain(_ domain.PowerUpKind, linesCleared int) float64 {
	return s.PerPlacement + s.PerLine*float64(linesCleared)
}
