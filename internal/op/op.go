// Package op is the operation catalog: the three operation kinds the claw
// can perform, each with a legality predicate and the deterministic
// transaction it produces against a world snapshot.
//
// Legality and transaction building are deliberately separate. Transaction
// may be computed for an illegal operation - the planner exploits this to
// explore hypothetical futures cheaply, skipping legality checks during
// search and validating the whole sequence once at the end. Callers that
// want both in one step use Apply.
package op

import "github.com/roach88/gantry/internal/world"

// Kind names an operation variant.
type Kind string

const (
	// KindMove lifts a block and sets it down on top of another block.
	KindMove Kind = "move"

	// KindClear lifts a block and sets it down on open ground.
	KindClear Kind = "clear"

	// KindTransit is render-only claw travel between two grips. It is
	// always legal and produces no store mutation; it exists so the
	// rendering layer has an explicit segment to animate.
	KindTransit Kind = "transit"
)

// Op is one claw operation.
//
// Field use by kind:
//
//	move:    Moved is picked up, Target is the destination block
//	clear:   Moved is picked up, Target is unused
//	transit: Moved is the block the claw leaves, Target the one it seeks
type Op struct {
	Kind   Kind     `json:"kind"`
	Moved  world.ID `json:"moved,omitempty"`
	Target world.ID `json:"target,omitempty"`
}

// Move builds a move operation: put moved down on target.
func Move(moved, target world.ID) Op {
	return Op{Kind: KindMove, Moved: moved, Target: target}
}

// Clear builds a clear operation: relocate moved to open ground.
func Clear(moved world.ID) Op {
	return Op{Kind: KindClear, Moved: moved}
}

// Transit builds a render-only claw travel segment.
func Transit(from, to world.ID) Op {
	return Op{Kind: KindTransit, Moved: from, Target: to}
}

// String renders the operation the way the CLI prints plan steps.
func (o Op) String() string {
	switch o.Kind {
	case KindMove:
		return "move " + string(o.Moved) + " onto " + string(o.Target)
	case KindClear:
		return "clear " + string(o.Moved)
	case KindTransit:
		return "transit " + string(o.Moved) + " -> " + string(o.Target)
	}
	return "unknown"
}
