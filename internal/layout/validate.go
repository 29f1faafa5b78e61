package layout

import (
	"fmt"
	"strings"

	"github.com/roach88/gantry/internal/world"
)

// Violation is one broken world invariant found by Validate.
type Violation struct {
	Block   world.ID
	Message string
}

// String renders the violation as "block: message".
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Block, v.Message)
}

// ValidationError aggregates every violation found in one pass, so a bad
// layout reports all of its problems at once instead of one per run.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d invariant violation(s):", len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "\n  %s: %s", v.Block, v.Message)
	}
	return b.String()
}

// Validate checks the physical invariants every operation-built world
// maintains by construction:
//
//   - each block has at most one supporter
//   - the supports relation is acyclic
//   - a supported block sits exactly on its supporter's top, at its x
//   - an unsupported block rests on the ground (y == 0)
//   - supports edges reference existing blocks
//
// Compiled layouts satisfy these automatically; the validator earns its
// keep on worlds decoded from session logs or assembled by hand.
func Validate(s world.Snapshot) error {
	var violations []Violation
	flag := func(id world.ID, format string, args ...any) {
		violations = append(violations, Violation{Block: id, Message: fmt.Sprintf(format, args...)})
	}

	for _, b := range s.AllBlocks() {
		supporters := s.Supporters(b.ID)
		if len(supporters) > 1 {
			flag(b.ID, "has %d supporters", len(supporters))
			continue
		}
		if len(supporters) == 0 {
			if b.Y != 0 {
				flag(b.ID, "floats at y=%d with no supporter", b.Y)
			}
			continue
		}
		sup, ok := s.Lookup(supporters[0])
		if !ok {
			flag(b.ID, "rests on missing block %q", supporters[0])
			continue
		}
		if b.Y != sup.Top() {
			flag(b.ID, "bottom y=%d does not meet supporter %q top y=%d", b.Y, sup.ID, sup.Top())
		}
		if b.X != sup.X {
			flag(b.ID, "x=%d not aligned with supporter %q x=%d", b.X, sup.ID, sup.X)
		}
	}

	for _, id := range cycles(s) {
		flag(id, "part of a support cycle")
	}

	// Edges may target blocks the snapshot no longer holds.
	for _, b := range s.AllBlocks() {
		for _, to := range s.Supported(b.ID) {
			if _, ok := s.Lookup(to); !ok {
				flag(b.ID, "supports missing block %q", to)
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// cycles returns the blocks involved in any support cycle, sorted.
func cycles(s world.Snapshot) []world.ID {
	const (
		unvisited = iota
		inStack
		finished
	)
	state := map[world.ID]int{}
	inCycle := map[world.ID]bool{}
	var stack []world.ID

	var walk func(id world.ID)
	walk = func(id world.ID) {
		state[id] = inStack
		stack = append(stack, id)
		for _, to := range s.Supported(id) {
			switch state[to] {
			case unvisited:
				walk(to)
			case inStack:
				// Back edge: everything on the stack from `to` down is
				// part of the cycle.
				for i := len(stack) - 1; i >= 0; i-- {
					inCycle[stack[i]] = true
					if stack[i] == to {
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = finished
	}

	for _, b := range s.AllBlocks() {
		if state[b.ID] == unvisited {
			walk(b.ID)
		}
	}

	var out []world.ID
	for _, b := range s.AllBlocks() {
		if inCycle[b.ID] {
			out = append(out, b.ID)
		}
	}
	return out
}
