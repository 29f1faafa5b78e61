package planner

import (
	"errors"
	"fmt"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/world"
)

// DefaultMaxSteps is the search budget: how many operations a plan may
// accumulate before the search reports failure.
const DefaultMaxSteps = 100

// Plan is an ordered operation sequence.
type Plan []op.Op

// Option adjusts search parameters.
type Option func(*config)

type config struct {
	maxSteps int
}

// WithMaxSteps overrides the step budget. Use a small value to exercise
// budget exhaustion in tests.
func WithMaxSteps(n int) Option {
	return func(c *config) { c.maxSteps = n }
}

// BudgetExceededError reports that the search spent its whole step budget
// without reaching the goal. It carries the partial plan accumulated so
// far; whether the goal was genuinely impossible or merely out of budget is
// not distinguished. This is a reported outcome, never a panic - callers
// decide whether to retry with a different goal or give up.
type BudgetExceededError struct {
	Goal    Goal
	Steps   int
	Partial Plan
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("no plan for goal %q within %d steps (%d partial operations)",
		e.Goal, e.Steps, len(e.Partial))
}

// IsBudgetExceeded reports whether err is a search budget failure.
// Uses errors.As to handle wrapped errors.
func IsBudgetExceeded(err error) bool {
	var be *BudgetExceededError
	return errors.As(err, &be)
}

// Solve searches for an operation sequence that makes the goal hold when
// applied to the snapshot. A goal that already holds yields an empty plan.
//
// Each step enumerates, over the currently clear blocks in deterministic
// sorted order, a clear for every identity and a move for every ordered
// pair of distinct identities; applies each candidate's transaction WITHOUT
// a legality check (legality holds by construction - only clear blocks are
// considered); scores the result with Distance; and commits to the first
// candidate attaining the lowest score. Ties therefore break by enumeration
// order, stably: clears win ties against moves, which keeps the claw digging
// blockers out to the ground instead of shuffling them between stacks.
//
// The returned plan has passed construction but not independent replay; run
// Validate before trusting it.
func Solve(g Goal, s world.Snapshot, opts ...Option) (Plan, error) {
	cfg := config{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := s.Lookup(g.Subject); !ok {
		return nil, &UnknownBlockError{Goal: g, ID: g.Subject}
	}
	if _, ok := s.Lookup(g.Supporter); !ok {
		return nil, &UnknownBlockError{Goal: g, ID: g.Supporter}
	}

	plan := Plan{}
	cur := s
	for steps := 0; ; steps++ {
		if Done(g, cur) {
			return plan, nil
		}
		if steps == cfg.maxSteps {
			return nil, &BudgetExceededError{Goal: g, Steps: steps, Partial: plan}
		}

		best, next, ok := bestCandidate(g, cur)
		if !ok {
			// No clear blocks means no blocks at all; unreachable once the
			// goal lookups above have passed, but fail closed regardless.
			return nil, &BudgetExceededError{Goal: g, Steps: steps, Partial: plan}
		}
		plan = append(plan, best)
		cur = next
	}
}

// bestCandidate scores every candidate operation against the goal and
// returns the winner plus the snapshot it leads to. Enumeration order is
// fixed: clears over clear blocks first, then moves over ordered pairs of
// clear blocks, with block identities in sorted order throughout.
func bestCandidate(g Goal, s world.Snapshot) (op.Op, world.Snapshot, bool) {
	clear := s.ClearBlocks()

	var (
		bestOp    op.Op
		bestNext  world.Snapshot
		bestScore int
		found     bool
	)
	consider := func(o op.Op) {
		next := s.Apply(op.Transaction(s, o))
		score := Distance(g, next)
		if !found || score < bestScore {
			bestOp, bestNext, bestScore, found = o, next, score, true
		}
	}

	for _, moved := range clear {
		consider(op.Clear(moved))
	}
	for _, moved := range clear {
		for _, target := range clear {
			if moved == target {
				continue
			}
			consider(op.Move(moved, target))
		}
	}
	return bestOp, bestNext, found
}
