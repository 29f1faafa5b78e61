package harness

import (
	"fmt"

	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/world"
)

// Result is the outcome of running one scenario.
type Result struct {
	Scenario *Scenario
	Start    world.Snapshot
	Plan     planner.Plan
	Final    world.Snapshot
	Outcome  string // "planned" or "budget_exceeded"
}

// Run builds the scenario's world, searches for a plan, validates it, and
// replays it to the final snapshot. Returns an error for malformed
// scenarios or broken planner invariants; an exhausted search budget is a
// Result with Outcome "budget_exceeded", not an error.
func Run(sc *Scenario) (*Result, error) {
	start, err := buildWorld(sc.World)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	goal := planner.Goal{
		Subject:   world.ID(sc.Goal.Subject),
		Supporter: world.ID(sc.Goal.Supporter),
	}

	var opts []planner.Option
	if sc.MaxSteps > 0 {
		opts = append(opts, planner.WithMaxSteps(sc.MaxSteps))
	}

	res := &Result{Scenario: sc, Start: start}

	plan, err := planner.Solve(goal, start, opts...)
	switch {
	case planner.IsBudgetExceeded(err):
		res.Outcome = "budget_exceeded"
		res.Plan = planner.Plan{}
		res.Final = start
		return res, nil
	case err != nil:
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	// Search output is never trusted without the independent replay.
	if err := planner.Validate(start, plan); err != nil {
		return nil, fmt.Errorf("scenario %s: plan failed validation: %w", sc.Name, err)
	}

	if sc.Transits {
		plan = planner.AddTransits(plan)
	}

	final, err := planner.Replay(start, plan)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	res.Outcome = "planned"
	res.Plan = plan
	res.Final = final
	return res, nil
}

// Done reports whether the scenario's goal holds on the final snapshot.
func (r *Result) Done() bool {
	goal := planner.Goal{
		Subject:   world.ID(r.Scenario.Goal.Subject),
		Supporter: world.ID(r.Scenario.Goal.Supporter),
	}
	return planner.Done(goal, r.Final)
}
