package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/generator"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/powerup"
	"svw.info/blockpuzzle/internal/reward"
	"svw.info/blockpuzzle/internal/shapes"
	"svw.info/blockpuzzle/internal/validator"
)

func block(i int) domain.Block { return domain.Block{Shape: shapes.At(i)} }

func newSession(t *testing.T, policy ports.RewardPolicy, rows, cols int, blocks ...domain.Block) *Session {
	t.Helper()
	s, err := New(Options{Rows: rows, Cols: cols, Generator: generator.NewCycle(blocks...), Policy: policy})
	require.NoError(t, err)
	return s
}

func kinds(events []domain.Event) []domain.EventKind {
	out := make([]domain.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func consistent(t *testing.T, s *Session) {
	t.Helper()
	for _, err := range validator.Check(s.Snapshot()) {
		t.Fatalf("inconsistent session: %v", err)
	}
}

func TestNewRequiresGeneratorAndPolicy(t *testing.T) {
	_, err := New(Options{Policy: reward.NewScore()})
	assert.ErrorIs(t, err, errNotConfigured)
	_, err = New(Options{Generator: generator.NewCycle(block(0))})
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestFreshSession(t *testing.T) {
	s := newSession(t, reward.NewScore(), 0, 0, block(0))
	snap := s.Snapshot()
	assert.Equal(t, 10, snap.Rows)
	assert.Equal(t, 10, snap.Cols)
	assert.Len(t, snap.Hand, 3)
	assert.Equal(t, domain.InProgress, snap.Outcome)
	for _, p := range snap.PowerUps {
		assert.True(t, p.Ready(), p.Kind.String())
	}
	consistent(t, s)
}

func TestScoreRowClear(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(0))
	var last []domain.Event
	for c := 0; c < 10; c++ {
		ev, err := s.PlaceBlock(c%3, 0, c)
		require.NoError(t, err)
		last = ev
		consistent(t, s)
	}
	assert.Equal(t, 200, s.Score())
	assert.Equal(t, domain.InProgress, s.Outcome())
	assert.Zero(t, s.grid.FilledCount())
	require.GreaterOrEqual(t, len(last), 2)
	assert.Equal(t, domain.EventBlockPlaced, last[0].Kind)
	assert.Equal(t, domain.EventLinesCleared, last[1].Kind)
	assert.Equal(t, []int{0}, last[1].Rows)
	assert.Equal(t, 100, last[1].Amount)
	assert.InDelta(t, 1.0/6, s.Snapshot().LevelProgress, 1e-9)
}

func TestRefillOnlyWhenAllPlaced(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(0))
	ev, err := s.PlaceBlock(0, 5, 5)
	require.NoError(t, err)
	assert.NotContains(t, kinds(ev), domain.EventHandRefilled)
	assert.True(t, s.Snapshot().Hand[0].Placed)

	_, err = s.PlaceBlock(0, 6, 6)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)

	_, err = s.PlaceBlock(1, 5, 6)
	require.NoError(t, err)
	ev, err = s.PlaceBlock(2, 5, 7)
	require.NoError(t, err)
	assert.Contains(t, kinds(ev), domain.EventHandRefilled)
	for _, b := range s.Snapshot().Hand {
		assert.False(t, b.Placed)
	}
}

func TestInvalidPlacementIsNoop(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(3))
	before := s.Snapshot()
	_, err := s.PlaceBlock(0, 0, 8)
	assert.ErrorIs(t, err, domain.ErrInvalidPlacement)
	assert.True(t, domain.Rejected(err))
	assert.Equal(t, before, s.Snapshot())

	_, err = s.PlaceBlock(0, 0, 0)
	require.NoError(t, err)
	_, err = s.PlaceBlock(1, 0, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidPlacement)
	_, err = s.PlaceBlock(7, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
}

func TestWinAfterQuota(t *testing.T) {
	s := newSession(t, reward.NewScore(), 2, 2, block(1))
	var ev []domain.Event
	for i := 0; i < 6; i++ {
		require.Equal(t, domain.InProgress, s.Outcome(), "turn %d", i)
		var err error
		ev, err = s.PlaceBlock(i%3, 0, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.Won, s.Outcome())
	assert.Contains(t, kinds(ev), domain.EventGameWon)
	assert.NotContains(t, kinds(ev), domain.EventHandRefilled)
	assert.Equal(t, 6*10+6*100, s.Score())
	assert.Equal(t, 1.0, s.Snapshot().LevelProgress)
	consistent(t, s)

	_, err := s.PlaceBlock(0, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
	_, err = s.ActivatePowerUp(domain.Bomb)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
}

func TestCoinsCountIntersectionOnce(t *testing.T) {
	marked := block(0)
	marked.Marker = &domain.Coord{}
	s := newSession(t, reward.NewCoins(), 3, 3, marked)
	s.grid.Set(1, 0, domain.Cell{Filled: true})
	s.grid.Set(1, 2, domain.Cell{Filled: true})
	s.grid.Set(0, 1, domain.Cell{Filled: true, Marker: true})
	s.grid.Set(2, 1, domain.Cell{Filled: true})

	ev, err := s.PlaceBlock(0, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, s.Score())
	require.Len(t, ev, 2)
	assert.Equal(t, 0, ev[0].Amount)
	assert.Equal(t, []int{1}, ev[1].Rows)
	assert.Equal(t, []int{1}, ev[1].Cols)
	assert.Len(t, ev[1].Cells, 5)
	assert.Zero(t, s.grid.FilledCount())
	assert.Zero(t, s.Snapshot().LevelProgress)

	assert.Equal(t, 100, s.Exit())
	ev = s.Reset()
	require.Len(t, ev, 2)
	assert.Equal(t, domain.Event{Kind: domain.EventPayout, Amount: 100}, ev[0])
	assert.Equal(t, domain.EventSessionReset, ev[1].Kind)
	assert.Zero(t, s.Score())
}

func TestScoreModeExitPaysNothing(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(0))
	_, err := s.PlaceBlock(0, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, s.Exit())
	assert.Equal(t, []domain.EventKind{domain.EventSessionReset}, kinds(s.Reset()))
}

func TestBomb(t *testing.T) {
	s := newSession(t, reward.NewScore(), 5, 5, block(0))
	for r := 0; r < 5; r++ {
		s.grid.Set(r, 0, domain.Cell{Filled: true})
		s.grid.Set(r, 4, domain.Cell{Filled: true})
	}
	s.grid.Set(2, 2, domain.Cell{Filled: true})

	ev, err := s.ActivatePowerUp(domain.Bomb)
	require.NoError(t, err)
	assert.Equal(t, []domain.EventKind{domain.EventPowerUpArmed}, kinds(ev))

	_, err = s.PlaceBlock(0, 9, 9)
	assert.ErrorIs(t, err, domain.ErrInvalidPlacement)
	assert.True(t, s.powerups.IsArmed(domain.Bomb))

	ev, err = s.PlaceBlock(0, 2, 1)
	require.NoError(t, err)
	require.NotEmpty(t, ev)
	assert.Equal(t, domain.EventBombDetonated, ev[0].Kind)
	assert.Len(t, ev[0].Cells, 9)
	assert.False(t, s.grid.Filled(2, 2))
	assert.False(t, s.grid.Filled(1, 0))
	assert.True(t, s.grid.Filled(0, 0))
	assert.True(t, s.grid.Filled(2, 4))
	assert.Zero(t, s.Score())
	assert.Zero(t, s.powerups.Readiness(domain.Bomb))
	assert.Equal(t, domain.PowerUpNone, s.powerups.Armed())
	assert.True(t, s.Snapshot().Hand[0].Placed)
	consistent(t, s)
}

func TestRotateNeedsArming(t *testing.T) {
	l := block(9)
	l.Marker = &domain.Coord{Row: 2, Col: 1}
	s := newSession(t, reward.NewScore(), 10, 10, l)

	_, err := s.RotateHandSlot(0)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)

	_, err = s.ActivatePowerUp(domain.Rotate)
	require.NoError(t, err)
	ev, err := s.RotateHandSlot(0)
	require.NoError(t, err)
	assert.Equal(t, []domain.EventKind{domain.EventSlotRotated}, kinds(ev))

	got := s.Snapshot().Hand[0]
	assert.True(t, shapes.Equal(shapes.Rotate(shapes.At(9)), got.Shape))
	assert.Equal(t, &domain.Coord{Row: 1, Col: 0}, got.Marker)
	assert.Zero(t, s.powerups.Readiness(domain.Rotate))
	assert.Equal(t, domain.PowerUpNone, s.powerups.Armed())

	_, err = s.ActivatePowerUp(domain.Rotate)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
	consistent(t, s)
}

func TestArmingIsExclusive(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(0))
	_, err := s.ActivatePowerUp(domain.Rotate)
	require.NoError(t, err)

	ev, err := s.ActivatePowerUp(domain.Bomb)
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{
		{Kind: domain.EventPowerUpDisarmed, PowerUp: domain.Rotate},
		{Kind: domain.EventPowerUpArmed, PowerUp: domain.Bomb},
	}, ev)

	ev, err = s.ActivatePowerUp(domain.Bomb)
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{{Kind: domain.EventPowerUpDisarmed, PowerUp: domain.Bomb}}, ev)
	assert.Equal(t, domain.PowerUpNone, s.Snapshot().Armed)
	assert.True(t, s.powerups.Ready(domain.Bomb))
}

func TestShuffleRedrawsUnplacedOnly(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(0), block(1), block(2), block(3), block(4))
	_, err := s.PlaceBlock(0, 0, 0)
	require.NoError(t, err)

	ev, err := s.ActivatePowerUp(domain.Shuffle)
	require.NoError(t, err)
	require.NotEmpty(t, ev)
	assert.Equal(t, domain.EventHandShuffled, ev[0].Kind)
	assert.Equal(t, 2, ev[0].Amount)

	h := s.Snapshot().Hand
	assert.True(t, h[0].Placed)
	assert.True(t, shapes.Equal(shapes.At(0), h[0].Shape))
	assert.True(t, shapes.Equal(shapes.At(3), h[1].Shape))
	assert.True(t, shapes.Equal(shapes.At(4), h[2].Shape))
	assert.Zero(t, s.powerups.Readiness(domain.Shuffle))

	_, err = s.ActivatePowerUp(domain.Shuffle)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
}

func TestLossDetection(t *testing.T) {
	s := newSession(t, reward.NewScore(), 3, 3, block(5))
	assert.False(t, s.IsLossState())

	require.NoError(t, s.powerups.Consume(domain.Shuffle))
	ev, err := s.PlaceBlock(0, 0, 0)
	require.NoError(t, err)
	assert.NotContains(t, kinds(ev), domain.EventGameLost, "bomb still ready")

	require.NoError(t, s.powerups.Consume(domain.Bomb))
	assert.True(t, s.IsLossState())

	// Hand a rotation-only fit to the checker: a 3x1 bar with only a
	// horizontal gap left.
	s2 := newSession(t, reward.NewScore(), 3, 3, block(4))
	for c := 0; c < 3; c++ {
		s2.grid.Set(0, c, domain.Cell{Filled: true})
		s2.grid.Set(2, c, domain.Cell{Filled: true})
	}
	require.NoError(t, s2.powerups.Consume(domain.Shuffle))
	require.NoError(t, s2.powerups.Consume(domain.Bomb))
	assert.False(t, s2.IsLossState())
	require.NoError(t, s2.powerups.Consume(domain.Rotate))
	assert.True(t, s2.IsLossState())
}

func TestLossEndsGame(t *testing.T) {
	s := newSession(t, reward.NewScore(), 3, 3, block(5))
	require.NoError(t, s.powerups.Consume(domain.Shuffle))
	require.NoError(t, s.powerups.Consume(domain.Bomb))

	ev, err := s.PlaceBlock(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.EventGameLost, ev[len(ev)-1].Kind)
	assert.Equal(t, domain.Lost, s.Outcome())
	consistent(t, s)

	_, err = s.PlaceBlock(1, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
	_, err = s.AdvanceReadiness(domain.Bomb, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)

	s.Reset()
	assert.Equal(t, domain.InProgress, s.Outcome())
	assert.Zero(t, s.grid.FilledCount())
	assert.True(t, s.powerups.Ready(domain.Bomb))
}

func TestAdvanceReadiness(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(0))
	require.NoError(t, s.powerups.Consume(domain.Bomb))

	_, err := s.AdvanceReadiness(domain.Bomb, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)

	ev, err := s.AdvanceReadiness(domain.Bomb, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{{Kind: domain.EventReadinessAdvanced, PowerUp: domain.Bomb}}, ev)
	assert.Equal(t, 0.5, s.powerups.Readiness(domain.Bomb))

	_, err = s.AdvanceReadiness(domain.Bomb, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.powerups.Readiness(domain.Bomb))
}

func TestProgressionPolicy(t *testing.T) {
	s, err := New(Options{
		Generator:   generator.NewCycle(block(0)),
		Policy:      reward.NewScore(),
		Progression: powerup.Steady{PerPlacement: 0.25},
	})
	require.NoError(t, err)
	require.NoError(t, s.powerups.Consume(domain.Bomb))

	ev, err := s.PlaceBlock(0, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, ev, domain.Event{Kind: domain.EventReadinessAdvanced, PowerUp: domain.Bomb})
	assert.Equal(t, 0.25, s.powerups.Readiness(domain.Bomb))
}

func TestProgressionAfterBomb(t *testing.T) {
	s, err := New(Options{
		Generator:   generator.NewCycle(block(0)),
		Policy:      reward.NewScore(),
		Progression: powerup.Steady{PerPlacement: 0.25},
	})
	require.NoError(t, err)
	s.grid.Set(4, 4, domain.Cell{Filled: true})

	_, err = s.ActivatePowerUp(domain.Bomb)
	require.NoError(t, err)
	ev, err := s.PlaceBlock(0, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.EventBombDetonated, ev[0].Kind)
	assert.Contains(t, ev, domain.Event{Kind: domain.EventReadinessAdvanced, PowerUp: domain.Bomb})
	assert.Equal(t, 0.25, s.powerups.Readiness(domain.Bomb))
	assert.Equal(t, 1.0, s.powerups.Readiness(domain.Shuffle))
	consistent(t, s)
}

func TestApply(t *testing.T) {
	s := newSession(t, reward.NewScore(), 10, 10, block(0))
	_, err := s.Apply(domain.Command{Op: domain.OpPlace, Slot: 1, Row: 3, Col: 4})
	require.NoError(t, err)
	assert.True(t, s.grid.Filled(3, 4))

	_, err = s.Apply(domain.Command{Op: domain.OpActivate, PowerUp: domain.Rotate})
	require.NoError(t, err)
	_, err = s.Apply(domain.Command{Op: domain.OpRotate, Slot: 0})
	require.NoError(t, err)

	_, err = s.Apply(domain.Command{Op: "jump"})
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)

	ev, err := s.Apply(domain.Command{Op: domain.OpReset})
	require.NoError(t, err)
	assert.Equal(t, []domain.EventKind{domain.EventSessionReset}, kinds(ev))
}

func TestRestoreRoundTrip(t *testing.T) {
	gen := generator.NewRandomGenerator(7, 3, 0.2)
	s, err := New(Options{Generator: gen, Policy: reward.NewCoins()})
	require.NoError(t, err)
	_, err = s.ActivatePowerUp(domain.Bomb)
	require.NoError(t, err)
	_, err = s.PlaceBlock(0, 4, 4)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	other := generator.NewRandomGenerator(999, 3, 0.2)
	r, err := Restore(data, Options{Generator: other, Policy: reward.NewCoins()})
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), r.Snapshot())
	assert.Equal(t, gen.Block(), other.Block())

	_, err = Restore(data, Options{Generator: other, Policy: reward.NewScore()})
	assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
	_, err = Restore([]byte("{"), Options{Generator: other, Policy: reward.NewCoins()})
	assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
}

func TestRestoreRejectsBrokenState(t *testing.T) {
	s := newSession(t, reward.NewScore(), 4, 4, block(0))
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))
	v["cells"] = v["cells"].([]any)[:3]
	broken, err := json.Marshal(v)
	require.NoError(t, err)

	_, err = Restore(broken, Options{Generator: generator.NewCycle(block(0)), Policy: reward.NewScore()})
	assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
}
