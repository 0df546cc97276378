package powerup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/blockpuzzle/internal/domain"
)

func TestNewAllReady(t *testing.T) {
	s := New()
	for _, k := range domain.PowerUpKinds {
		assert.True(t, s.Ready(k), k.String())
	}
	assert.Equal(t, domain.PowerUpNone, s.Armed())
}

func TestArmingIsMutuallyExclusive(t *testing.T) {
	s := New()
	armed, err := s.Toggle(domain.Rotate)
	require.NoError(t, err)
	assert.True(t, armed)
	assert.True(t, s.IsArmed(domain.Rotate))

	armed, err = s.Toggle(domain.Bomb)
	require.NoError(t, err)
	assert.True(t, armed)
	assert.True(t, s.IsArmed(domain.Bomb))
	assert.False(t, s.IsArmed(domain.Rotate))

	armed, err = s.Toggle(domain.Bomb)
	require.NoError(t, err)
	assert.False(t, armed)
	assert.Equal(t, domain.PowerUpNone, s.Armed())
}

func TestShuffleCannotBeArmed(t *testing.T) {
	s := New()
	_, err := s.Toggle(domain.Shuffle)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
	_, err = s.Toggle(domain.PowerUpNone)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
}

func TestConsumeResetsAndDisarms(t *testing.T) {
	s := New()
	_, err := s.Toggle(domain.Bomb)
	require.NoError(t, err)
	require.NoError(t, s.Consume(domain.Bomb))
	assert.Equal(t, 0.0, s.Readiness(domain.Bomb))
	assert.Equal(t, domain.PowerUpNone, s.Armed())

	assert.ErrorIs(t, s.Consume(domain.Bomb), domain.ErrInvalidCommand)
	_, err = s.Toggle(domain.Bomb)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
}

func TestAdvanceClampsAndRestoresReadiness(t *testing.T) {
	s := New()
	require.NoError(t, s.Consume(domain.Shuffle))

	v, err := s.Advance(domain.Shuffle, 0.4)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, v, 1e-9)
	assert.False(t, s.Ready(domain.Shuffle))

	v, err = s.Advance(domain.Shuffle, 5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	assert.True(t, s.Ready(domain.Shuffle))

	_, err = s.Advance(domain.Shuffle, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
	_, err = s.Advance(domain.Shuffle, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
}

func TestRestoreValidates(t *testing.T) {
	s, err := Restore([]domain.PowerUp{
		{Kind: domain.Shuffle, Readiness: 0.5},
		{Kind: domain.Rotate, Readiness: 1},
		{Kind: domain.Bomb, Readiness: 0},
	}, domain.Rotate)
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Readiness(domain.Shuffle))
	assert.True(t, s.IsArmed(domain.Rotate))

	_, err = Restore([]domain.PowerUp{{Kind: domain.Bomb, Readiness: 0}}, domain.Bomb)
	assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
	_, err = Restore([]domain.PowerUp{{Kind: domain.Bomb, Readiness: 2}}, domain.PowerUpNone)
	assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
}

func TestStatesOrder(t *testing.T) {
	got := New().States()
	require.Len(t, got, 3)
	assert.Equal(t, domain.Shuffle, got[0].Kind)
	assert.Equal(t, domain.Rotate, got[1].Kind)
	assert.Equal(t, domain.Bomb, got[2].Kind)
}

func TestProgression(t *testing.T) {
	assert.Zero(t, Frozen{}.Gain(domain.Bomb, 4))

	st := Steady{PerPlacement: 0.05, PerLine: 0.25}
	assert.InDelta(t, 0.05, st.Gain(domain.Shuffle, 0), 1e-9)
	assert.InDelta(t, 0.55, st.Gain(domain.Rotate, 2), 1e-9)
}
