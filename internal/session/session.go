package session

import (
	"errors"
	"fmt"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/grid"
	"svw.info/blockpuzzle/internal/hand"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/powerup"
	"svw.info/blockpuzzle/internal/solver"
)

// Options configure a playthrough. Generator and Policy are required; the
// rest fall back to the classic 10×10 board with a hand of three.
type Options struct {
	Rows        int
	Cols        int
	HandSize    int
	BombRadius  int
	Generator   ports.Generator
	Policy      ports.RewardPolicy
	Progression ports.Progression
}

var errNotConfigured = errors.New("session not configured")

func (o Options) withDefaults() (Options, error) {
	if o.Generator == nil || o.Policy == nil {
		return o, errNotConfigured
	}
	if o.Rows <= 0 {
		o.Rows = 10
	}
	if o.Cols <= 0 {
		o.Cols = 10
	}
	if o.HandSize <= 0 {
		o.HandSize = hand.DefaultSize
	}
	if o.BombRadius <= 0 {
		o.BombRadius = 1
	}
	if o.Progression == nil {
		o.Progression = powerup.Frozen{}
	}
	return o, nil
}

// Session is one playthrough. It owns its grid, hand and power-ups; they are
// only changed through the command methods below. A Session is not safe for
// concurrent use.
type Session struct {
	opts     Options
	grid     *grid.Grid
	hand     *hand.Hand
	powerups *powerup.Set
	solver   *solver.PlacementSolver

	score        int // coins when the policy is a currency
	linesCleared int
	outcome      domain.Outcome

	events []domain.Event
}

// New starts a fresh session.
func New(opts Options) (*Session, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	s := &Session{opts: opts, solver: solver.New()}
	s.start()
	return s, nil
}

func (s *Session) start() {
	s.grid = grid.New(s.opts.Rows, s.opts.Cols)
	s.hand = hand.New(s.opts.Generator, s.opts.HandSize)
	s.powerups = powerup.New()
	s.score = 0
	s.linesCleared = 0
	s.outcome = domain.InProgress
}

func (s *Session) Mode() domain.Mode { return s.opts.Policy.Mode() }

func (s *Session) Outcome() domain.Outcome { return s.outcome }

// Score is the running total: points in score mode, coins in coin mode.
func (s *Session) Score() int { return s.score }

func (s *Session) emit(e domain.Event) { s.events = append(s.events, e) }

func (s *Session) flush() []domain.Event {
	out := s.events
	s.events = nil
	return out
}

func (s *Session) playable() error {
	if s.outcome.Terminal() {
		return fmt.Errorf("%w: game is %s", domain.ErrInvalidCommand, s.outcome)
	}
	return nil
}

// PlaceBlock drops hand slot at (row,col). With the bomb armed the drop
// detonates instead: the square around the target cell is cleared and the
// slot is used up.
func (s *Session) PlaceBlock(slot, row, col int) ([]domain.Event, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	b, err := s.hand.Available(slot)
	if err != nil {
		return nil, err
	}
	if s.powerups.IsArmed(domain.Bomb) {
		if err := s.detonate(slot, row, col); err != nil {
			return nil, err
		}
		return s.flush(), nil
	}
	if err := s.grid.Place(b, row, col); err != nil {
		return nil, err
	}
	if err := s.hand.MarkPlaced(slot); err != nil {
		return nil, err
	}
	gain := s.opts.Policy.PlacementReward(b)
	s.score += gain
	s.emit(domain.Event{Kind: domain.EventBlockPlaced, Slot: slot, Target: &domain.Coord{Row: row, Col: col}, Amount: gain})
	s.resolve()
	return s.flush(), nil
}

func (s *Session) detonate(slot, row, col int) error {
	if !s.grid.InBounds(row, col) {
		return fmt.Errorf("%w: bomb target (%d,%d) off the grid", domain.ErrInvalidPlacement, row, col)
	}
	if err := s.powerups.Consume(domain.Bomb); err != nil {
		return err
	}
	cells := s.grid.ClearRadius(domain.Coord{Row: row, Col: col}, s.opts.BombRadius)
	if err := s.hand.MarkPlaced(slot); err != nil {
		return err
	}
	s.emit(domain.Event{Kind: domain.EventBombDetonated, Slot: slot, Target: &domain.Coord{Row: row, Col: col}, Cells: cells, PowerUp: domain.Bomb})
	s.progress(0)
	s.refill()
	s.checkLoss()
	return nil
}

// resolve runs the turn after a normal placement: award and clear full
// lines, check the level quota, progress power-ups, refill, check for loss.
func (s *Session) resolve() {
	lines := s.grid.DetectFullLines()
	if !lines.Empty() {
		coords := s.grid.ClearedCells(lines)
		cleared := make([]domain.Cell, len(coords))
		for i, p := range coords {
			cleared[i] = s.grid.At(p.Row, p.Col)
		}
		gain := s.opts.Policy.ClearReward(lines, cleared)
		s.score += gain
		s.grid.Clear(lines)
		s.linesCleared += lines.Count()
		s.emit(domain.Event{Kind: domain.EventLinesCleared, Rows: lines.Rows, Cols: lines.Cols, Cells: coords, Amount: gain})

		if q := s.opts.Policy.LinesPerLevel(); q > 0 && s.linesCleared >= q {
			s.outcome = domain.Won
			s.powerups.Disarm()
			s.emit(domain.Event{Kind: domain.EventGameWon, Amount: s.score})
			return
		}
	}
	s.progress(lines.Count())
	s.refill()
	s.checkLoss()
}

func (s *Session) progress(lines int) {
	for _, k := range domain.PowerUpKinds {
		amount := s.opts.Progression.Gain(k, lines)
		if amount <= 0 || s.powerups.Ready(k) {
			continue
		}
		if _, err := s.powerups.Advance(k, amount); err == nil {
			s.emit(domain.Event{Kind: domain.EventReadinessAdvanced, PowerUp: k})
		}
	}
}

func (s *Session) refill() {
	if !s.hand.AllPlaced() {
		return
	}
	if err := s.hand.Refill(s.opts.Generator); err == nil {
		s.emit(domain.Event{Kind: domain.EventHandRefilled, Amount: s.hand.Len()})
	}
}

func (s *Session) checkLoss() {
	if s.outcome != domain.InProgress || !s.IsLossState() {
		return
	}
	s.outcome = domain.Lost
	s.powerups.Disarm()
	s.emit(domain.Event{Kind: domain.EventGameLost, Amount: s.score})
}

// IsLossState reports whether the player is stuck: no escape power-up is
// ready and no unplaced block fits anywhere, rotated or not.
func (s *Session) IsLossState() bool {
	if s.powerups.Ready(domain.Bomb) || s.powerups.Ready(domain.Shuffle) {
		return false
	}
	ok, _ := s.solver.AnyFit(s.grid, s.hand.Blocks(), s.powerups.Ready(domain.Rotate))
	return !ok
}

// RotateHandSlot turns a hand block clockwise using the armed rotate
// power-up.
func (s *Session) RotateHandSlot(slot int) ([]domain.Event, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	if !s.powerups.IsArmed(domain.Rotate) {
		return nil, fmt.Errorf("%w: rotate is not armed", domain.ErrInvalidCommand)
	}
	if _, err := s.hand.Available(slot); err != nil {
		return nil, err
	}
	if err := s.hand.RotateSlot(slot); err != nil {
		return nil, err
	}
	if err := s.powerups.Consume(domain.Rotate); err != nil {
		return nil, err
	}
	s.emit(domain.Event{Kind: domain.EventSlotRotated, Slot: slot, PowerUp: domain.Rotate})
	s.checkLoss()
	return s.flush(), nil
}

// ActivatePowerUp fires shuffle immediately; rotate and bomb are toggled
// between armed and disarmed.
func (s *Session) ActivatePowerUp(kind domain.PowerUpKind) ([]domain.Event, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	if kind == domain.Shuffle {
		if err := s.powerups.Consume(domain.Shuffle); err != nil {
			return nil, err
		}
		redrawn := s.hand.Reshuffle(s.opts.Generator)
		s.emit(domain.Event{Kind: domain.EventHandShuffled, Amount: len(redrawn), PowerUp: domain.Shuffle})
		s.checkLoss()
		return s.flush(), nil
	}
	prev := s.powerups.Armed()
	armed, err := s.powerups.Toggle(kind)
	if err != nil {
		return nil, err
	}
	if prev != domain.PowerUpNone && prev != kind {
		s.emit(domain.Event{Kind: domain.EventPowerUpDisarmed, PowerUp: prev})
	}
	if armed {
		s.emit(domain.Event{Kind: domain.EventPowerUpArmed, PowerUp: kind})
	} else {
		s.emit(domain.Event{Kind: domain.EventPowerUpDisarmed, PowerUp: kind})
	}
	return s.flush(), nil
}

// AdvanceReadiness feeds external progression into one power-up.
func (s *Session) AdvanceReadiness(kind domain.PowerUpKind, amount float64) ([]domain.Event, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	if _, err := s.powerups.Advance(kind, amount); err != nil {
		return nil, err
	}
	s.emit(domain.Event{Kind: domain.EventReadinessAdvanced, PowerUp: kind})
	return s.flush(), nil
}

// Reset starts over. In coin mode the coins collected so far are reported
// in a payout event before they are zeroed.
func (s *Session) Reset() []domain.Event {
	if s.opts.Policy.Currency() {
		s.emit(domain.Event{Kind: domain.EventPayout, Amount: s.score})
	}
	s.start()
	s.emit(domain.Event{Kind: domain.EventSessionReset})
	return s.flush()
}

// Exit returns the currency to hand off when the player leaves: the coins
// collected in coin mode, zero otherwise.
func (s *Session) Exit() int {
	if !s.opts.Policy.Currency() {
		return 0
	}
	return s.score
}

// Apply dispatches a transport-level command.
func (s *Session) Apply(c domain.Command) ([]domain.Event, error) {
	switch c.Op {
	case domain.OpPlace:
		return s.PlaceBlock(c.Slot, c.Row, c.Col)
	case domain.OpRotate:
		return s.RotateHandSlot(c.Slot)
	case domain.OpActivate:
		return s.ActivatePowerUp(c.PowerUp)
	case domain.OpAdvance:
		return s.AdvanceReadiness(c.PowerUp, c.Amount)
	case domain.OpReset:
		return s.Reset(), nil
	}
	return nil, fmt.Errorf("%w: unknown op %q", domain.ErrInvalidCommand, c.Op)
}

// Snapshot returns a copy of the state for rendering.
func (s *Session) Snapshot() domain.Snapshot {
	progress := 0.0
	if q := s.opts.Policy.LinesPerLevel(); q > 0 {
		progress = min(1.0, float64(s.linesCleared)/float64(q))
	}
	return domain.Snapshot{
		Mode:          s.opts.Policy.Mode(),
		Rows:          s.grid.Rows(),
		Cols:          s.grid.Cols(),
		Grid:          s.grid.Matrix(),
		Hand:          s.hand.Blocks(),
		PowerUps:      s.powerups.States(),
		Armed:         s.powerups.Armed(),
		Score:         s.score,
		LinesCleared:  s.linesCleared,
		LevelProgress: progress,
		Outcome:       s.outcome,
	}
}
