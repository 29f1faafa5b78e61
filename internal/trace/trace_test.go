package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/world"
	"github.com/roach88/gantry/internal/worldgen"
)

func sampleWorld(t *testing.T) world.Snapshot {
	t.Helper()
	return world.New(0).Apply(world.Transaction{
		world.AddBlock(world.Block{ID: "a", X: 0, Y: 0, Side: 40, Color: world.Color{R: 200}}),
		world.AddBlock(world.Block{ID: "b", X: 0, Y: 40, Side: 40, Color: world.Color{G: 120}}),
		world.AssertSupport("a", "b"),
	})
}

func TestMarshalCanonical_SortedKeysNoFloats(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"z": 1,
		"a": "x",
		"m": []any{true, "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","m":[true,"y"],"z":1}`, string(got))

	_, err = MarshalCanonical(map[string]any{"f": 1.5})
	assert.Error(t, err, "floats must be rejected")

	_, err = MarshalCanonical(nil)
	assert.Error(t, err, "null must be rejected")
}

func TestWorldRoundTrip(t *testing.T) {
	s := sampleWorld(t)

	data, err := MarshalWorld(s)
	require.NoError(t, err)

	back, err := UnmarshalWorld(data)
	require.NoError(t, err)
	assert.True(t, s.Equal(back))
}

func TestDecodeWorld_Rejections(t *testing.T) {
	_, err := DecodeWorld(WorldDoc{Blocks: []BlockDoc{
		{ID: "a", Side: 40},
		{ID: "a", Side: 40},
	}})
	assert.Error(t, err, "duplicate block")

	_, err = DecodeWorld(WorldDoc{Blocks: []BlockDoc{
		{ID: "a", Side: 40, On: "ghost"},
	}})
	assert.Error(t, err, "unknown supporter")
}

func TestEncodeWorld_MultiSupporterRejected(t *testing.T) {
	s := world.New(0).Apply(world.Transaction{
		world.AddBlock(world.Block{ID: "a", Side: 40}),
		world.AddBlock(world.Block{ID: "b", X: 40, Side: 40}),
		world.AddBlock(world.Block{ID: "c", X: 20, Y: 40, Side: 40}),
		world.AssertSupport("a", "c"),
		world.AssertSupport("b", "c"),
	})
	_, err := EncodeWorld(s)
	assert.Error(t, err)
}

func TestPlanRoundTrip(t *testing.T) {
	p := planner.Plan{op.Clear("d"), op.Transit("d", "a"), op.Move("a", "b")}

	data, err := MarshalPlan(p)
	require.NoError(t, err)

	back, err := UnmarshalPlan(data)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	_, err = UnmarshalPlan([]byte(`[{"kind":"teleport","moved":"a"}]`))
	assert.Error(t, err, "unknown kinds must be rejected")
}

func TestWorldDigest_StableAcrossConstruction(t *testing.T) {
	s := sampleWorld(t)

	d1, err := WorldDigest(s)
	require.NoError(t, err)

	// Same world rebuilt through the wire form digests identically.
	data, err := MarshalWorld(s)
	require.NoError(t, err)
	back, err := UnmarshalWorld(data)
	require.NoError(t, err)
	d2, err := WorldDigest(back)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	// Any attribute change moves the digest.
	moved := s.Apply(world.Transaction{world.SetPosition("b", 0, 99)})
	d3, err := WorldDigest(moved)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestStepDigest_Deterministic(t *testing.T) {
	s := worldgen.Generate(worldgen.NewParams(worldgen.WithSeed(4), worldgen.WithCount(6)))
	o := op.Clear(s.ClearBlocks()[0])
	after, err := op.Apply(s, o)
	require.NoError(t, err)

	d1, err := StepDigest("session-1", 0, o, after)
	require.NoError(t, err)
	d2, err := StepDigest("session-1", 0, o, after)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	d3, err := StepDigest("session-2", 0, o, after)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3, "digests are domain-separated by session")
}
