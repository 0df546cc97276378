package generator

import (
	"encoding/binary"
	"errors"

	"svw.info/blockpuzzle/internal/domain"
)

// Cycle repeats a fixed list of blocks. Tutorials and tests use it to get a
// known hand.
type Cycle struct {
	blocks []domain.Block
	next   int
}

func NewCycle(blocks ...domain.Block) *Cycle {
	cp := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		cp[i] = b.Clone()
		cp[i].Placed = false
	}
	return &Cycle{blocks: cp}
}

func (c *Cycle) Block() domain.Block {
	if len(c.blocks) == 0 {
		return domain.Block{Shape: domain.Shape{{true}}}
	}
	b := c.blocks[c.next%len(c.blocks)].Clone()
	c.next++
	return b
}

func (c *Cycle) MarshalBinary() ([]byte, error) {
	return binary.AppendUvarint(nil, uint64(c.next)), nil
}

func (c *Cycle) UnmarshalBinary(data []byte) error {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return errors.New("cycle: bad state")
	}
	c.next = int(v)
	return nil
}
