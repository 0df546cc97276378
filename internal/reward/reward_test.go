package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"svw.info/blockpuzzle/internal/domain"
)

func TestScorePolicy(t *testing.T) {
	s := NewScore()
	assert.Equal(t, domain.ModeScore, s.Mode())
	assert.Equal(t, 10, s.PlacementReward(domain.Block{}))
	assert.Equal(t, 0, s.ClearReward(domain.Lines{}, nil))
	assert.Equal(t, 100, s.ClearReward(domain.Lines{Rows: []int{3}}, nil))
	assert.Equal(t, 300, s.ClearReward(domain.Lines{Rows: []int{1, 2}, Cols: []int{0}}, nil))
	assert.Equal(t, 6, s.LinesPerLevel())
	assert.False(t, s.Currency())
}

func TestCoinsPolicyCountsMarkersOnce(t *testing.T) {
	c := NewCoins()
	assert.Equal(t, domain.ModeCoins, c.Mode())
	assert.Equal(t, 0, c.PlacementReward(domain.Block{}))
	assert.True(t, c.Currency())
	assert.Zero(t, c.LinesPerLevel())

	cleared := []domain.Cell{
		{Filled: true, Marker: true},
		{Filled: true},
		{Filled: true, Marker: true},
		{},
	}
	lines := domain.Lines{Rows: []int{0}, Cols: []int{0}}
	assert.Equal(t, 100, c.ClearReward(lines, cleared))
	assert.Equal(t, 0, c.ClearReward(lines, nil))
}
