package session

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/grid"
	"svw.info/blockpuzzle/internal/hand"
	"svw.info/blockpuzzle/internal/powerup"
	"svw.info/blockpuzzle/internal/solver"
	"svw.info/blockpuzzle/internal/validator"
)

// saved is the serialized form of a session. Generator holds the RNG state
// when the generator can marshal itself.
type saved struct {
	Mode         domain.Mode        `json:"mode"`
	Rows         int                `json:"rows"`
	Cols         int                `json:"cols"`
	Cells        []domain.Cell      `json:"cells"`
	Hand         []domain.Block     `json:"hand"`
	PowerUps     []domain.PowerUp   `json:"powerUps"`
	Armed        domain.PowerUpKind `json:"armed"`
	Score        int                `json:"score"`
	LinesCleared int                `json:"linesCleared"`
	Outcome      domain.Outcome     `json:"outcome"`
	Generator    []byte             `json:"generator,omitempty"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	v := saved{
		Mode:         s.Mode(),
		Rows:         s.grid.Rows(),
		Cols:         s.grid.Cols(),
		Cells:        s.grid.Cells(),
		Hand:         s.hand.Blocks(),
		PowerUps:     s.powerups.States(),
		Armed:        s.powerups.Armed(),
		Score:        s.score,
		LinesCleared: s.linesCleared,
		Outcome:      s.outcome,
	}
	if m, ok := s.opts.Generator.(encoding.BinaryMarshaler); ok {
		state, err := m.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("generator state: %w", err)
		}
		v.Generator = state
	}
	return json.Marshal(v)
}

// Restore rebuilds a session from MarshalJSON output. opts must carry a
// policy of the same mode and a generator of the same kind; the generator's
// state is overwritten with the saved one.
func Restore(data []byte, opts Options) (*Session, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	var v saved
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalInconsistency, err)
	}
	if v.Mode != opts.Policy.Mode() {
		return nil, fmt.Errorf("%w: saved %s session restored with %s policy", domain.ErrInternalInconsistency, v.Mode, opts.Policy.Mode())
	}
	if len(v.Generator) > 0 {
		u, ok := opts.Generator.(encoding.BinaryUnmarshaler)
		if !ok {
			return nil, fmt.Errorf("%w: generator cannot restore saved state", domain.ErrInternalInconsistency)
		}
		if err := u.UnmarshalBinary(v.Generator); err != nil {
			return nil, fmt.Errorf("%w: generator state: %v", domain.ErrInternalInconsistency, err)
		}
	}

	g, err := grid.FromCells(v.Rows, v.Cols, v.Cells)
	if err != nil {
		return nil, err
	}
	ps, err := powerup.Restore(v.PowerUps, v.Armed)
	if err != nil {
		return nil, err
	}
	opts.Rows, opts.Cols = v.Rows, v.Cols
	opts.HandSize = len(v.Hand)
	s := &Session{
		opts:         opts,
		grid:         g,
		hand:         hand.FromBlocks(v.Hand),
		powerups:     ps,
		solver:       solver.New(),
		score:        v.Score,
		linesCleared: v.LinesCleared,
		outcome:      v.Outcome,
	}
	if errs := validator.Check(s.Snapshot()); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}
