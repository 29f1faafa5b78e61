package planner

import (
	"errors"
	"fmt"

	"github.com/roach88/gantry/internal/world"
)

// Goal is an ordered pair of block identities: Subject must end up directly
// supported by Supporter.
type Goal struct {
	Subject   world.ID `json:"subject"`
	Supporter world.ID `json:"supporter"`
}

// String renders the goal the way the CLI accepts it: "subject-on-supporter".
func (g Goal) String() string {
	return string(g.Subject) + " on " + string(g.Supporter)
}

// Done reports whether the goal holds in the snapshot: the supporter has an
// outgoing supports edge to the subject. Nothing else matters - the subject
// may carry further blocks on top and the goal still counts as met.
func Done(g Goal, s world.Snapshot) bool {
	for _, to := range s.Supported(g.Supporter) {
		if to == g.Subject {
			return true
		}
	}
	return false
}

// Distance scores a snapshot against a goal; lower is better.
//
// A snapshot where the goal already holds scores -1, strictly below every
// other attainable score, so a completing candidate always wins the step.
// Otherwise the score is the number of blocks sitting (transitively) above
// the subject plus the number above the supporter - a proxy for how much
// digging remains before both can be brought together.
func Distance(g Goal, s world.Snapshot) int {
	if Done(g, s) {
		return -1
	}
	return s.TransitiveSupportCount(g.Subject) + s.TransitiveSupportCount(g.Supporter)
}

// UnknownBlockError reports a goal referencing a block identity absent from
// the snapshot. Surfaced before any search happens.
type UnknownBlockError struct {
	Goal Goal
	ID   world.ID
}

// Error implements the error interface.
func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("goal %q references unknown block %q", e.Goal, e.ID)
}

// IsUnknownBlock reports whether err is an UnknownBlockError.
func IsUnknownBlock(err error) bool {
	var ue *UnknownBlockError
	return errors.As(err, &ue)
}
