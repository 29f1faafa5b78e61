package planner

import (
	"fmt"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/world"
)

// Replay applies the plan operation by operation through the
// legality-checking apply path and returns the final snapshot. It stops at
// the first illegal or inapplicable operation, reporting its index.
//
// This is the independent correctness pass the search skips: Solve builds
// futures unchecked for speed, so nothing downstream may trust a plan until
// a replay from the same starting snapshot succeeds.
func Replay(s world.Snapshot, p Plan) (world.Snapshot, error) {
	cur := s
	for i, o := range p {
		next, err := op.Apply(cur, o)
		if err != nil {
			return world.Snapshot{}, fmt.Errorf("plan step %d (%s): %w", i, o, err)
		}
		cur = next
	}
	return cur, nil
}

// Validate reports whether the entire plan replays legally from the
// snapshot. Nil means the plan is safe to hand to the rendering layer.
func Validate(s world.Snapshot, p Plan) error {
	_, err := Replay(s, p)
	return err
}

// IsValid is the boolean view of Validate.
func IsValid(s world.Snapshot, p Plan) bool {
	return Validate(s, p) == nil
}

// AddTransits returns the plan with a render-only transit operation
// inserted between each consecutive pair of operations whose moved block
// differs - the claw-travel segment the animation draws between releasing
// one grip and seeking the next. Transit carries block identities, not
// positions, and applying it mutates nothing.
func AddTransits(p Plan) Plan {
	if len(p) == 0 {
		return p
	}
	out := make(Plan, 0, 2*len(p)-1)
	out = append(out, p[0])
	for i := 1; i < len(p); i++ {
		if prev := p[i-1]; prev.Moved != p[i].Moved {
			out = append(out, op.Transit(prev.Moved, p[i].Moved))
		}
		out = append(out, p[i])
	}
	return out
}
