package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/gantry/internal/planner"
)

// AssertionError reports one failed scenario expectation with the produced
// operation sequence for context.
type AssertionError struct {
	Scenario string
	Type     string
	Expected string
	Actual   string
	Ops      []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario %s: assertion failed: %s\n", e.Scenario, e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual:   %s\n", e.Actual)
	if len(e.Ops) > 0 {
		fmt.Fprintf(&buf, "plan:\n")
		for i, o := range e.Ops {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, o)
		}
	}
	return buf.String()
}

// Check runs the scenario's expectations against its result. The first
// failed expectation is returned; nil means all held.
func Check(res *Result) error {
	sc := res.Scenario
	ops := opStrings(res.Plan)
	fail := func(typ, expected, actual string) error {
		return &AssertionError{
			Scenario: sc.Name,
			Type:     typ,
			Expected: expected,
			Actual:   actual,
			Ops:      ops,
		}
	}

	if sc.Expect.Outcome != "" && res.Outcome != sc.Expect.Outcome {
		return fail("outcome", sc.Expect.Outcome, res.Outcome)
	}

	if len(sc.Expect.Ops) > 0 {
		want := strings.Join(sc.Expect.Ops, "; ")
		got := strings.Join(ops, "; ")
		if want != got {
			return fail("ops", want, got)
		}
	}

	if sc.Expect.MaxOps > 0 && len(res.Plan) > sc.Expect.MaxOps {
		return fail("max_ops",
			fmt.Sprintf("at most %d operations", sc.Expect.MaxOps),
			fmt.Sprintf("%d operations", len(res.Plan)))
	}

	wantDone := res.Outcome == "planned"
	if sc.Expect.Done != nil {
		wantDone = *sc.Expect.Done
	}
	if got := res.Done(); got != wantDone {
		return fail("done", fmt.Sprintf("%v", wantDone), fmt.Sprintf("%v", got))
	}

	return nil
}

func opStrings(plan planner.Plan) []string {
	out := make([]string, len(plan))
	for i, o := range plan {
		out[i] = o.String()
	}
	return out
}
