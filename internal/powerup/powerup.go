package powerup

import (
	"fmt"

	"svw.info/blockpuzzle/internal/domain"
)

// Set tracks readiness of the three power-ups and which aimable one, if any,
// is armed. Rotate and bomb are never armed at the same time.
type Set struct {
	readiness [4]float64 // indexed by domain.PowerUpKind
	armed     domain.PowerUpKind
}

// New returns a set with every power-up ready and nothing armed.
func New() *Set {
	s := &Set{}
	s.Reset()
	return s
}

// Restore rebuilds a set from saved readiness values.
func Restore(ps []domain.PowerUp, armed domain.PowerUpKind) (*Set, error) {
	s := &Set{}
	for _, p := range ps {
		if err := known(p.Kind); err != nil {
			return nil, err
		}
		if p.Readiness < 0 || p.Readiness > 1 {
			return nil, fmt.Errorf("%w: %s readiness %v", domain.ErrInternalInconsistency, p.Kind, p.Readiness)
		}
		s.readiness[p.Kind] = p.Readiness
	}
	if armed != domain.PowerUpNone {
		if !armed.Aimable() || !s.Ready(armed) {
			return nil, fmt.Errorf("%w: %s armed but not aimable and ready", domain.ErrInternalInconsistency, armed)
		}
	}
	s.armed = armed
	return s, nil
}

func known(k domain.PowerUpKind) error {
	switch k {
	case domain.Shuffle, domain.Rotate, domain.Bomb:
		return nil
	}
	return fmt.Errorf("%w: unknown power-up %d", domain.ErrInvalidCommand, int(k))
}

// Reset makes every power-up ready and disarms.
func (s *Set) Reset() {
	for _, k := range domain.PowerUpKinds {
		s.readiness[k] = 1.0
	}
	s.armed = domain.PowerUpNone
}

func (s *Set) Readiness(k domain.PowerUpKind) float64 {
	if known(k) != nil {
		return 0
	}
	return s.readiness[k]
}

func (s *Set) Ready(k domain.PowerUpKind) bool { return s.Readiness(k) >= 1.0 }

// Armed returns the armed kind or PowerUpNone.
func (s *Set) Armed() domain.PowerUpKind { return s.armed }

func (s *Set) IsArmed(k domain.PowerUpKind) bool { return k != domain.PowerUpNone && s.armed == k }

// Toggle arms k, or disarms it when it is already armed. Arming one aimable
// power-up disarms the other. It returns whether k ends up armed.
func (s *Set) Toggle(k domain.PowerUpKind) (bool, error) {
	if err := known(k); err != nil {
		return false, err
	}
	if !k.Aimable() {
		return false, fmt.Errorf("%w: %s cannot be armed", domain.ErrInvalidCommand, k)
	}
	if s.armed == k {
		s.armed = domain.PowerUpNone
		return false, nil
	}
	if !s.Ready(k) {
		return false, fmt.Errorf("%w: %s not ready (%.2f)", domain.ErrInvalidCommand, k, s.readiness[k])
	}
	s.armed = k
	return true, nil
}

// Disarm clears any armed power-up.
func (s *Set) Disarm() { s.armed = domain.PowerUpNone }

// Consume spends a ready power-up: readiness drops to zero and it is
// disarmed if it was armed.
func (s *Set) Consume(k domain.PowerUpKind) error {
	if err := known(k); err != nil {
		return err
	}
	if !s.Ready(k) {
		return fmt.Errorf("%w: %s not ready (%.2f)", domain.ErrInvalidCommand, k, s.readiness[k])
	}
	s.readiness[k] = 0
	if s.armed == k {
		s.armed = domain.PowerUpNone
	}
	return nil
}

// Advance adds progression to k, clamped at 1. It returns the new readiness.
func (s *Set) Advance(k domain.PowerUpKind, amount float64) (float64, error) {
	if err := known(k); err != nil {
		return 0, err
	}
	if !(amount > 0) {
		return s.readiness[k], fmt.Errorf("%w: readiness amount %v", domain.ErrInvalidCommand, amount)
	}
	s.readiness[k] = min(1.0, s.readiness[k]+amount)
	return s.readiness[k], nil
}

// States returns readiness for every kind in display order.
func (s *Set) States() []domain.PowerUp {
	out := make([]domain.PowerUp, 0, len(domain.PowerUpKinds))
	for _, k := range domain.PowerUpKinds {
		out = append(out, domain.PowerUp{Kind: k, Readiness: s.readiness[k]})
	}
	return out
}
