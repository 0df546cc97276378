package ports

import (
	"context"
	"errors"
	"time"

	"svw.info/blockpuzzle/internal/domain"
)

// Stats captures performance characteristics of a search.
type Stats struct {
	Nodes    int
	Duration time.Duration
}

// Generator produces fresh blocks for the hand.
type Generator interface {
	Block() domain.Block
}

// RewardPolicy decides what a turn is worth. One engine serves both game
// modes; only the policy differs.
type RewardPolicy interface {
	Mode() domain.Mode
	// PlacementReward is granted for every successful normal placement.
	PlacementReward(b domain.Block) int
	// ClearReward is evaluated before the lines are cleared. cleared holds
	// each cleared cell exactly once.
	ClearReward(lines domain.Lines, cleared []domain.Cell) int
	// LinesPerLevel is the line quota that wins the level; 0 means the mode
	// has no win condition.
	LinesPerLevel() int
	// Currency reports whether the running total is paid out to a wallet.
	Currency() bool
}

// Progression grants power-up readiness as play advances.
type Progression interface {
	// Gain returns how much readiness kind earns for a placement that
	// cleared the given number of lines.
	Gain(kind domain.PowerUpKind, linesCleared int) float64
}

// Hinter suggests the next legal move.
type Hinter interface {
	Hint(ctx context.Context, s domain.Snapshot) (domain.Hint, bool, error)
}

// Store keeps serialized sessions by ID. Saving with a zero CreatedAt keeps
// the one already stored.
type Store interface {
	Save(ctx context.Context, id string, meta domain.SessionMeta, data []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.SessionMeta, error)
}

// Wallet receives the final currency total of coin sessions.
type Wallet interface {
	Credit(ctx context.Context, amount int) (balance int, err error)
	Balance(ctx context.Context) (int, error)
}

// ErrNotFound is returned by stores for unknown session IDs.
var ErrNotFound = errors.New("not found")
