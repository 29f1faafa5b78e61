// Package harness runs conformance scenarios against the planning core.
//
// A scenario is a YAML file declaring a world, a goal, and expectations
// about the plan the search must produce. Scenarios double as documentation
// of planner behavior: the golden trace files under testdata pin the exact
// operation sequence and final arrangement for each canned world.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gantry/internal/world"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden file shares it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// World declares the starting arrangement.
	World WorldSpec `yaml:"world"`

	// Goal is the support relation the plan must establish.
	Goal GoalSpec `yaml:"goal"`

	// Transits, when true, augments the plan with claw-travel segments
	// before tracing.
	Transits bool `yaml:"transits,omitempty"`

	// MaxSteps overrides the search budget. Zero means the default.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Expect holds the scenario's assertions.
	Expect Expect `yaml:"expect"`
}

// WorldSpec declares a starting world. Blocks are placed in declaration
// order; a stacked block must name a block declared before it.
type WorldSpec struct {
	GroundWidth int         `yaml:"ground_width,omitempty"`
	Side        int         `yaml:"side,omitempty"`
	Blocks      []BlockSpec `yaml:"blocks"`
}

// BlockSpec declares one block: grounded with an x, or stacked with on.
type BlockSpec struct {
	ID string `yaml:"id"`
	X  *int   `yaml:"x,omitempty"`
	On string `yaml:"on,omitempty"`
}

// GoalSpec mirrors planner.Goal in YAML form.
type GoalSpec struct {
	Subject   string `yaml:"subject"`
	Supporter string `yaml:"supporter"`
}

// Expect declares the assertions run after planning.
type Expect struct {
	// Outcome is "planned" or "budget_exceeded".
	Outcome string `yaml:"outcome"`

	// Ops, when non-empty, must equal the produced operation strings.
	Ops []string `yaml:"ops,omitempty"`

	// MaxOps, when positive, bounds the plan length.
	MaxOps int `yaml:"max_ops,omitempty"`

	// Done asserts the goal holds on the final snapshot. Defaults true
	// for planned outcomes.
	Done *bool `yaml:"done,omitempty"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &sc, nil
}

// buildWorld turns a WorldSpec into a snapshot. Placement is direct and
// unvalidated, like the initializer's.
func buildWorld(ws WorldSpec) (world.Snapshot, error) {
	side := ws.Side
	if side <= 0 {
		side = 40
	}

	placed := map[string]world.Block{}
	var tx world.Transaction
	for i, bs := range ws.Blocks {
		if bs.ID == "" {
			return world.Snapshot{}, fmt.Errorf("block %d: id is required", i)
		}
		if _, dup := placed[bs.ID]; dup {
			return world.Snapshot{}, fmt.Errorf("block %q: duplicate id", bs.ID)
		}
		switch {
		case bs.On != "" && bs.X != nil:
			return world.Snapshot{}, fmt.Errorf("block %q: declare either x or on, not both", bs.ID)
		case bs.On == "" && bs.X == nil:
			return world.Snapshot{}, fmt.Errorf("block %q: needs x (grounded) or on (stacked)", bs.ID)
		}

		b := world.Block{ID: world.ID(bs.ID), Side: side}
		if bs.X != nil {
			b.X = *bs.X
			tx = append(tx, world.AddBlock(b))
		} else {
			sup, ok := placed[bs.On]
			if !ok {
				return world.Snapshot{}, fmt.Errorf("block %q: rests on undeclared block %q", bs.ID, bs.On)
			}
			b.X = sup.X
			b.Y = sup.Top()
			tx = append(tx, world.AddBlock(b), world.AssertSupport(sup.ID, b.ID))
		}
		placed[bs.ID] = b
	}
	return world.New(ws.GroundWidth).Apply(tx), nil
}
