package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/gantry/internal/trace"
	"github.com/roach88/gantry/internal/world"
)

// TraceSnapshot captures a scenario run for golden comparison: the
// operation sequence and the final arrangement, serialized canonically so
// byte equality is meaningful.
type TraceSnapshot struct {
	Scenario string
	Goal     string
	Outcome  string
	Ops      []string
	Done     bool
	Final    []string
}

// NewTraceSnapshot builds the snapshot for a finished run.
func NewTraceSnapshot(res *Result) *TraceSnapshot {
	return &TraceSnapshot{
		Scenario: res.Scenario.Name,
		Goal:     fmt.Sprintf("%s on %s", res.Scenario.Goal.Subject, res.Scenario.Goal.Supporter),
		Outcome:  res.Outcome,
		Ops:      opStrings(res.Plan),
		Done:     res.Done(),
		Final:    arrangementLines(res.Final),
	}
}

// toCanonicalMap converts the snapshot for trace.MarshalCanonical, which
// only accepts maps, slices, and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	ops := make([]any, len(s.Ops))
	for i, o := range s.Ops {
		ops[i] = o
	}
	final := make([]any, len(s.Final))
	for i, l := range s.Final {
		final[i] = l
	}
	return map[string]any{
		"scenario": s.Scenario,
		"goal":     s.Goal,
		"outcome":  s.Outcome,
		"ops":      ops,
		"done":     s.Done,
		"final":    final,
	}
}

// arrangementLines renders a snapshot as one line per block, sorted by ID.
// A block with a supporter shows it; a grounded block shows "ground".
func arrangementLines(s world.Snapshot) []string {
	var lines []string
	for _, b := range s.AllBlocks() {
		on := "ground"
		if sups := s.Supporters(b.ID); len(sups) > 0 {
			on = string(sups[0])
			for _, id := range sups[1:] {
				on += "+" + string(id)
			}
		}
		lines = append(lines, fmt.Sprintf("%s x=%d y=%d side=%d on=%s", b.ID, b.X, b.Y, b.Side, on))
	}
	return lines
}

// RunWithGolden executes a scenario, checks its expectations, and compares
// the trace against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	res, err := Run(sc)
	if err != nil {
		return err
	}
	if err := Check(res); err != nil {
		return err
	}

	data, err := trace.MarshalCanonical(NewTraceSnapshot(res).toCanonicalMap())
	if err != nil {
		return fmt.Errorf("serialize trace: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, data)

	return nil
}
