package reward

import (
	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/ports"
)

// Score is the classic mode: points per placement, points per line and a
// level won after a quota of lines.
type Score struct {
	Placement  int
	PerLine    int
	LevelQuota int
}

// NewScore returns the classic values: 10 per placement,
// 100 per line, six lines per level.
func NewScore() Score { return Score{Placement: 10, PerLine: 100, LevelQuota: 6} }

func (s Score) Mode() domain.Mode { return domain.ModeScore }

func (s Score) PlacementReward(domain.Block) int { return s.Placement }

func (s Score) ClearReward(lines domain.Lines, _ []domain.Cell) int {
	return s.PerLine * lines.Count()
}

func (s Score) LinesPerLevel() int { return s.LevelQuota }

func (s Score) Currency() bool { return false }

// Coins pays only for marker cells that are cleared. Placement earns
// nothing and there is no level to win.
type Coins struct {
	PerMarker int
}

func NewCoins() Coins { return Coins{PerMarker: 50} }

func (c Coins) Mode() domain.Mode { return domain.ModeCoins }

func (c Coins) PlacementReward(domain.Block) int { return 0 }

// ClearReward counts markers among cleared cells. Callers pass each cleared
// cell once, so a marker on a row/column intersection pays once.
func (c Coins) ClearReward(_ domain.Lines, cleared []domain.Cell) int {
	n := 0
	for _, cell := range cleared {
		if cell.Filled && cell.Marker {
			n++
		}
	}
	return n * c.PerMarker
}

func (c Coins) LinesPerLevel() int { return 0 }

func (c Coins) Currency() bool { return true }

var (
	_ ports.RewardPolicy = Score{}
	_ ports.RewardPolicy = Coins{}
)
