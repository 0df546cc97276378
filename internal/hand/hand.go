package hand

import (
	"fmt"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/shapes"
)

// DefaultSize is the number of offered blocks.
const DefaultSize = 3

// Hand is the ordered set of offered blocks. It is refilled as a whole, never
// slot by slot.
type Hand struct {
	slots []domain.Block
}

// New draws size blocks from gen.
func New(gen ports.Generator, size int) *Hand {
	h := &Hand{slots: make([]domain.Block, size)}
	h.fill(gen)
	return h
}

// FromBlocks rebuilds a hand from saved slots.
func FromBlocks(blocks []domain.Block) *Hand {
	h := &Hand{slots: make([]domain.Block, len(blocks))}
	for i, b := range blocks {
		h.slots[i] = b.Clone()
	}
	return h
}

func (h *Hand) fill(gen ports.Generator) {
	for i := range h.slots {
		h.slots[i] = gen.Block()
	}
}

func (h *Hand) Len() int { return len(h.slots) }

func (h *Hand) valid(i int) error {
	if i < 0 || i >= len(h.slots) {
		return fmt.Errorf("%w: slot %d out of range", domain.ErrInvalidCommand, i)
	}
	return nil
}

// Slot returns a copy of the block in slot i.
func (h *Hand) Slot(i int) (domain.Block, error) {
	if err := h.valid(i); err != nil {
		return domain.Block{}, err
	}
	return h.slots[i].Clone(), nil
}

// Available returns the block in slot i if it is still waiting to be placed.
func (h *Hand) Available(i int) (domain.Block, error) {
	b, err := h.Slot(i)
	if err != nil {
		return b, err
	}
	if b.Placed {
		return b, fmt.Errorf("%w: slot %d already placed", domain.ErrInvalidCommand, i)
	}
	return b, nil
}

// Blocks returns copies of every slot.
func (h *Hand) Blocks() []domain.Block {
	out := make([]domain.Block, len(h.slots))
	for i, b := range h.slots {
		out[i] = b.Clone()
	}
	return out
}

// RotateSlot turns slot i clockwise, carrying its marker along.
func (h *Hand) RotateSlot(i int) error {
	b, err := h.Available(i)
	if err != nil {
		return err
	}
	r, err := Rotated(b)
	if err != nil {
		return err
	}
	h.slots[i] = r
	return nil
}

// Rotated returns b turned clockwise. The marker coordinate goes through the
// same transform as the shape.
func Rotated(b domain.Block) (domain.Block, error) {
	rows, _ := b.Shape.Dims()
	out := b.Clone()
	out.Shape = shapes.Rotate(b.Shape)
	if b.Marker != nil {
		m := shapes.RotateCoord(*b.Marker, rows)
		if !out.Shape.Occupied(m) {
			return b, fmt.Errorf("%w: marker %v not on rotated shape", domain.ErrInternalInconsistency, m)
		}
		out.Marker = &m
	}
	return out, nil
}

func (h *Hand) MarkPlaced(i int) error {
	if _, err := h.Available(i); err != nil {
		return err
	}
	h.slots[i].Placed = true
	return nil
}

// AllPlaced is the refill trigger.
func (h *Hand) AllPlaced() bool {
	for _, b := range h.slots {
		if !b.Placed {
			return false
		}
	}
	return true
}

// Unplaced returns the indices still waiting to be placed.
func (h *Hand) Unplaced() []int {
	var out []int
	for i, b := range h.slots {
		if !b.Placed {
			out = append(out, i)
		}
	}
	return out
}

// Refill replaces the whole hand. It refuses while any block is unplaced.
func (h *Hand) Refill(gen ports.Generator) error {
	if !h.AllPlaced() {
		return fmt.Errorf("%w: refill with %d unplaced blocks", domain.ErrInvalidCommand, len(h.Unplaced()))
	}
	h.fill(gen)
	return nil
}

// Reshuffle redraws only the unplaced slots and returns their indices.
func (h *Hand) Reshuffle(gen ports.Generator) []int {
	idx := h.Unplaced()
	for _, i := range idx {
		h.slots[i] = gen.Block()
	}
	return idx
}
