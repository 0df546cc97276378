package domain

// Coord identifies a cell, either on the grid or inside a shape.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Shape is a small occupancy matrix. Treat values as immutable; rotation
// and generation always return fresh copies.
type Shape [][]bool

// Dims returns rows and columns of the shape.
func (s Shape) Dims() (rows, cols int) {
	if len(s) == 0 {
		return 0, 0
	}
	return len(s), len(s[0])
}

// Occupied reports whether c is a filled cell of the shape.
func (s Shape) Occupied(c Coord) bool {
	if c.Row < 0 || c.Row >= len(s) || c.Col < 0 || c.Col >= len(s[c.Row]) {
		return false
	}
	return s[c.Row][c.Col]
}

// ColorID indexes the configured palette.
type ColorID int

// Block is one offered piece in the hand.
type Block struct {
	Shape  Shape   `json:"shape"`
	Color  ColorID `json:"color"`
	Placed bool    `json:"placed,omitempty"`
	// Marker is the bonus cell in shape coordinates (coin mode).
	Marker *Coord `json:"marker,omitempty"`
}

// Clone deep-copies the block so snapshots never alias session state.
func (b Block) Clone() Block {
	out := b
	if b.Shape != nil {
		out.Shape = make(Shape, len(b.Shape))
		for i, row := range b.Shape {
			out.Shape[i] = append([]bool(nil), row...)
		}
	}
	if b.Marker != nil {
		m := *b.Marker
		out.Marker = &m
	}
	return out
}

// Cell is one grid cell. The zero value is empty.
type Cell struct {
	Filled bool    `json:"filled,omitempty"`
	Color  ColorID `json:"color,omitempty"`
	Marker bool    `json:"marker,omitempty"`
}

// Lines is the result of full-line detection.
type Lines struct {
	Rows []int `json:"rows"`
	Cols []int `json:"cols"`
}

// Count is the number of full rows plus full columns.
func (l Lines) Count() int { return len(l.Rows) + len(l.Cols) }

func (l Lines) Empty() bool { return l.Count() == 0 }

// PowerUp is the readiness of one kind; ready at 1.0.
type PowerUp struct {
	Kind      PowerUpKind `json:"kind"`
	Readiness float64     `json:"readiness"`
}

func (p PowerUp) Ready() bool { return p.Readiness >= 1.0 }

// Event reports something that happened during a command. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind    EventKind   `json:"kind"`
	Slot    int         `json:"slot,omitempty"`
	Target  *Coord      `json:"target,omitempty"`
	Rows    []int       `json:"rows,omitempty"`
	Cols    []int       `json:"cols,omitempty"`
	Cells   []Coord     `json:"cells,omitempty"`
	Amount  int         `json:"amount,omitempty"`
	PowerUp PowerUpKind `json:"powerUp,omitempty"`
}

// Hint suggests a legal placement for the host UI.
type Hint struct {
	Slot    int   `json:"slot"`
	Origin  Coord `json:"origin"`
	Rotated bool  `json:"rotated,omitempty"`
}

// Snapshot is a read-only copy of a session for renderers.
type Snapshot struct {
	Mode          Mode        `json:"mode"`
	Rows          int         `json:"rows"`
	Cols          int         `json:"cols"`
	Grid          [][]Cell    `json:"grid"`
	Hand          []Block     `json:"hand"`
	PowerUps      []PowerUp   `json:"powerUps"`
	Armed         PowerUpKind `json:"armed"`
	Score         int         `json:"score"` // coins in coin mode
	LinesCleared  int         `json:"linesCleared"`
	LevelProgress float64     `json:"levelProgress"`
	Outcome       Outcome     `json:"outcome"`
}

// PowerUp returns the readiness entry for kind.
func (s Snapshot) PowerUp(kind PowerUpKind) PowerUp {
	for _, p := range s.PowerUps {
		if p.Kind == kind {
			return p
		}
	}
	return PowerUp{Kind: kind}
}

// Command is a transport-neutral controller command.
type Command struct {
	Op      Op          `json:"op"`
	Slot    int         `json:"slot,omitempty"`
	Row     int         `json:"row,omitempty"`
	Col     int         `json:"col,omitempty"`
	PowerUp PowerUpKind `json:"powerUp,omitempty"`
	Amount  float64     `json:"amount,omitempty"`
}

// SessionMeta is a lightweight listing entry.
type SessionMeta struct {
	ID        string  `json:"id"`
	Mode      Mode    `json:"mode"`
	Score     int     `json:"score"`
	Outcome   Outcome `json:"outcome"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}
