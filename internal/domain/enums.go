package domain

import (
	"fmt"
	"strings"
)

// Mode selects how a session rewards the player.
type Mode int

const (
	ModeScore Mode = iota // flat score per placement and line
	ModeCoins             // coins per marker cell cleared
)

func (m Mode) String() string {
	switch m {
	case ModeCoins:
		return "coins"
	default:
		return "score"
	}
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode accepts "score" or "coins" (and "coin"), case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score":
		return ModeScore, nil
	case "coins", "coin":
		return ModeCoins, nil
	}
	return ModeScore, fmt.Errorf("unknown mode %q", s)
}

// PowerUpKind identifies one of the three power-ups.
type PowerUpKind int

const (
	PowerUpNone PowerUpKind = iota
	Shuffle
	Rotate
	Bomb
)

// PowerUpKinds lists the real kinds in display order.
var PowerUpKinds = [...]PowerUpKind{Shuffle, Rotate, Bomb}

func (k PowerUpKind) String() string {
	switch k {
	case Shuffle:
		return "shuffle"
	case Rotate:
		return "rotate"
	case Bomb:
		return "bomb"
	default:
		return "none"
	}
}

func (k PowerUpKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PowerUpKind) UnmarshalText(b []byte) error {
	v, err := ParsePowerUpKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func ParsePowerUpKind(s string) (PowerUpKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PowerUpNone, nil
	case "shuffle":
		return Shuffle, nil
	case "rotate":
		return Rotate, nil
	case "bomb":
		return Bomb, nil
	}
	return PowerUpNone, fmt.Errorf("unknown power-up %q", s)
}

// Aimable reports whether the kind has an armed mode (rotate, bomb).
func (k PowerUpKind) Aimable() bool { return k == Rotate || k == Bomb }

// Outcome is the state of a playthrough.
type Outcome int

const (
	InProgress Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "in_progress"
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "in_progress", "":
		*o = InProgress
	case "won":
		*o = Won
	case "lost":
		*o = Lost
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Terminal reports whether only a reset is accepted.
func (o Outcome) Terminal() bool { return o != InProgress }

// EventKind classifies what happened during a command.
type EventKind int

const (
	EventBlockPlaced EventKind = iota
	EventLinesCleared
	EventBombDetonated
	EventSlotRotated
	EventHandShuffled
	EventHandRefilled
	EventPowerUpArmed
	EventPowerUpDisarmed
	EventReadinessAdvanced
	EventGameWon
	EventGameLost
	EventSessionReset
	EventPayout
)

var eventNames = [...]string{
	EventBlockPlaced:       "block_placed",
	EventLinesCleared:      "lines_cleared",
	EventBombDetonated:     "bomb_detonated",
	EventSlotRotated:       "slot_rotated",
	EventHandShuffled:      "hand_shuffled",
	EventHandRefilled:      "hand_refilled",
	EventPowerUpArmed:      "powerup_armed",
	EventPowerUpDisarmed:   "powerup_disarmed",
	EventReadinessAdvanced: "readiness_advanced",
	EventGameWon:           "game_won",
	EventGameLost:          "game_lost",
	EventSessionReset:      "session_reset",
	EventPayout:            "payout",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	for i, name := range eventNames {
		if name == string(b) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event %q", b)
}

// Op names a controller command.
type Op string

const (
	OpPlace    Op = "place"
	OpRotate   Op = "rotate"
	OpActivate Op = "activate"
	OpAdvance  Op = "advance"
	OpReset    Op = "reset"
)
