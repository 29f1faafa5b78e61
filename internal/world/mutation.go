package world

// MutationKind discriminates the mutation variants a transaction may carry.
type MutationKind string

const (
	// MutAddBlock introduces a new block with its full attribute set.
	// Used only by world construction (initializer, layout compiler).
	MutAddBlock MutationKind = "add_block"

	// MutAssertSupport adds a supports edge From -> To (From holds up To).
	MutAssertSupport MutationKind = "assert_support"

	// MutRetractSupport removes the supports edge From -> To if present.
	MutRetractSupport MutationKind = "retract_support"

	// MutSetPosition overwrites a block's X and Y.
	MutSetPosition MutationKind = "set_position"
)

// Mutation is a single store-level change. Which fields are meaningful
// depends on Kind; the zero value of the rest is ignored.
type Mutation struct {
	Kind MutationKind `json:"kind"`

	// AddBlock payload.
	Block Block `json:"block,omitzero"`

	// Assert/retract payload: From supports To.
	From ID `json:"from,omitempty"`
	To   ID `json:"to,omitempty"`

	// SetPosition payload.
	ID ID  `json:"id,omitempty"`
	X  int `json:"x,omitempty"`
	Y  int `json:"y,omitempty"`
}

// Transaction is an ordered list of mutations applied atomically (in the
// value-semantics sense: Apply yields one new snapshot for the whole list).
type Transaction []Mutation

// AddBlock builds an add_block mutation.
func AddBlock(b Block) Mutation {
	return Mutation{Kind: MutAddBlock, Block: b}
}

// AssertSupport builds an assert_support mutation: from holds up to.
func AssertSupport(from, to ID) Mutation {
	return Mutation{Kind: MutAssertSupport, From: from, To: to}
}

// RetractSupport builds a retract_support mutation.
func RetractSupport(from, to ID) Mutation {
	return Mutation{Kind: MutRetractSupport, From: from, To: to}
}

// SetPosition builds a set_position mutation.
func SetPosition(id ID, x, y int) Mutation {
	return Mutation{Kind: MutSetPosition, ID: id, X: x, Y: y}
}
