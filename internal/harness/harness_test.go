package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios sweeps every YAML under testdata/scenarios through the
// runner, checks its expectations, and pins the trace against its golden
// file. Regenerate goldens with:
//
//	go test ./internal/harness -update
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			sc, err := Load(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, sc))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "anon.yaml")
		require.NoError(t, os.WriteFile(path, []byte("description: no name here"), 0o644))
		_, err := Load(path)
		require.ErrorContains(t, err, "name is required")
	})
}

func TestBuildWorld_Errors(t *testing.T) {
	x := 0
	tests := []struct {
		name   string
		blocks []BlockSpec
		want   string
	}{
		{
			name:   "duplicate id",
			blocks: []BlockSpec{{ID: "a", X: &x}, {ID: "a", X: &x}},
			want:   "duplicate id",
		},
		{
			name:   "missing id",
			blocks: []BlockSpec{{X: &x}},
			want:   "id is required",
		},
		{
			name:   "both x and on",
			blocks: []BlockSpec{{ID: "a", X: &x}, {ID: "b", X: &x, On: "a"}},
			want:   "either x or on",
		},
		{
			name:   "neither x nor on",
			blocks: []BlockSpec{{ID: "a"}},
			want:   "needs x",
		},
		{
			name:   "forward reference",
			blocks: []BlockSpec{{ID: "a", On: "b"}, {ID: "b", X: &x}},
			want:   "undeclared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildWorld(WorldSpec{Blocks: tt.blocks})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheck_Failures(t *testing.T) {
	x0, x100 := 0, 100
	base := Scenario{
		Name: "check-failures",
		World: WorldSpec{
			Side: 40,
			Blocks: []BlockSpec{
				{ID: "a", X: &x0},
				{ID: "b", X: &x100},
			},
		},
		Goal: GoalSpec{Subject: "a", Supporter: "b"},
	}

	t.Run("wrong ops", func(t *testing.T) {
		sc := base
		sc.Expect = Expect{Ops: []string{"clear a"}}
		res, err := Run(&sc)
		require.NoError(t, err)

		err = Check(res)
		require.Error(t, err)
		var aerr *AssertionError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, "ops", aerr.Type)
		assert.Equal(t, []string{"move a onto b"}, aerr.Ops)
	})

	t.Run("wrong outcome", func(t *testing.T) {
		sc := base
		sc.Expect = Expect{Outcome: "budget_exceeded"}
		res, err := Run(&sc)
		require.NoError(t, err)

		err = Check(res)
		var aerr *AssertionError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, "outcome", aerr.Type)
	})

	t.Run("plan too long", func(t *testing.T) {
		sc := base
		sc.World.Blocks = append(sc.World.Blocks, BlockSpec{ID: "c", On: "b"})
		sc.Expect = Expect{MaxOps: 1}
		res, err := Run(&sc)
		require.NoError(t, err)

		err = Check(res)
		var aerr *AssertionError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, "max_ops", aerr.Type)
	})

	t.Run("all expectations hold", func(t *testing.T) {
		sc := base
		sc.Expect = Expect{Outcome: "planned", Ops: []string{"move a onto b"}, MaxOps: 1}
		res, err := Run(&sc)
		require.NoError(t, err)
		require.NoError(t, Check(res))
	})
}

func TestRun_BudgetExceededIsNotAnError(t *testing.T) {
	x := 0
	sc := &Scenario{
		Name: "self-goal",
		World: WorldSpec{
			Side:   40,
			Blocks: []BlockSpec{{ID: "a", X: &x}},
		},
		Goal:     GoalSpec{Subject: "a", Supporter: "a"},
		MaxSteps: 3,
	}

	res, err := Run(sc)
	require.NoError(t, err)
	assert.Equal(t, "budget_exceeded", res.Outcome)
	assert.Empty(t, res.Plan)
	assert.True(t, res.Final.Equal(res.Start), "exhausted search must not mutate the world")
	assert.False(t, res.Done())
}

func TestRun_MalformedScenario(t *testing.T) {
	sc := &Scenario{
		Name:  "broken",
		World: WorldSpec{Blocks: []BlockSpec{{ID: "a"}}},
		Goal:  GoalSpec{Subject: "a", Supporter: "a"},
	}
	_, err := Run(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario broken")
}
