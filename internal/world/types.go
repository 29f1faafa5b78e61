package world

// ID identifies a block. IDs are opaque, unique, and stable for the
// block's lifetime.
type ID string

// Color is a cosmetic RGB triple. Planning logic never reads it.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Block is a square block resting on the ground or on another block.
//
// X is the horizontal position of the left edge. Y is the height of the
// BOTTOM edge above the ground, so a grounded block has Y == 0. Side is the
// edge length, fixed at creation.
type Block struct {
	ID    ID    `json:"id"`
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Side  int   `json:"side"`
	Color Color `json:"color"`
}

// Top returns the height of the block's top edge.
func (b Block) Top() int { return b.Y + b.Side }

// Overlaps reports whether the horizontal intervals [X, X+Side) of the two
// blocks have a nonempty open intersection.
func (b Block) Overlaps(o Block) bool {
	return b.X < o.X+o.Side && o.X < b.X+b.Side
}

// DefaultGroundWidth bounds the ground scan when no explicit width is
// configured. Matches the canvas width the rendering layer draws into.
const DefaultGroundWidth = 600
