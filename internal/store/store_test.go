package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/world"
	"github.com/roach88/gantry/internal/worldgen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "gantry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// solvedSession plans a real goal over a generated world and wraps the
// result in a session record.
func solvedSession(t *testing.T, token string) Session {
	t.Helper()
	s := worldgen.Generate(worldgen.NewParams(worldgen.WithSeed(11), worldgen.WithCount(8)))
	blocks := s.AllBlocks()
	goal := planner.Goal{Subject: blocks[0].ID, Supporter: blocks[len(blocks)-1].ID}

	plan, err := planner.Solve(goal, s)
	require.NoError(t, err)
	require.NoError(t, planner.Validate(s, plan))

	sess, err := NewSession(token, goal, s, plan, OutcomePlanned)
	require.NoError(t, err)
	return sess
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gantry.db")

	st1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	st2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st2.Close())
}

func TestRecordAndReadSession(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	sess := solvedSession(t, "sess-1")

	require.NoError(t, st.RecordRun(ctx, sess))

	got, err := st.ReadSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Goal, got.Goal)
	assert.Equal(t, sess.Plan, got.Plan)
	assert.Equal(t, sess.WorldDigest, got.WorldDigest)
	assert.Equal(t, sess.PlanDigest, got.PlanDigest)
	assert.Equal(t, OutcomePlanned, got.Outcome)
	assert.True(t, sess.World.Equal(got.World), "world survives the wire round trip")

	steps, err := st.ReadSteps(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, steps, len(sess.Plan))
	for i, step := range steps {
		assert.Equal(t, i, step.Idx)
		assert.Equal(t, sess.Plan[i], step.Op)
		assert.NotEmpty(t, step.StepDigest)
	}
}

func TestReadSession_NotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := st.ReadSession(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordRun_Idempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	sess := solvedSession(t, "sess-1")

	require.NoError(t, st.RecordRun(ctx, sess))
	require.NoError(t, st.RecordRun(ctx, sess), "re-recording must be a no-op")

	steps, err := st.ReadSteps(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, steps, len(sess.Plan), "no duplicate step rows")
}

func TestListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	tokens, err := st.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	require.NoError(t, st.RecordRun(ctx, solvedSession(t, "sess-b")))
	require.NoError(t, st.RecordRun(ctx, solvedSession(t, "sess-a")))

	tokens, err = st.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-a", "sess-b"}, tokens)
}

func TestReplay_RecordedSessionMatches(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	sess := solvedSession(t, "sess-1")
	require.NoError(t, st.RecordRun(ctx, sess))

	res, err := st.Replay(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, res.Match, "detail: %s", res.Detail)
	assert.Equal(t, len(sess.Plan), res.Steps)
	assert.Equal(t, -1, res.DivergedAt)
}

func TestReplay_DetectsTampering(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	sess := solvedSession(t, "sess-1")
	require.NoError(t, st.RecordRun(ctx, sess))

	// Corrupt one recorded digest behind the store's back.
	_, err := st.db.ExecContext(ctx,
		`UPDATE steps SET step_digest = 'bogus' WHERE session_token = ? AND idx = 0`, "sess-1")
	require.NoError(t, err)

	res, err := st.Replay(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 0, res.DivergedAt)
	assert.Contains(t, res.Detail, "digest mismatch")
}

func TestReplay_EmptyPlan(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s := world.New(0).Apply(world.Transaction{
		world.AddBlock(world.Block{ID: "a", Side: 40}),
		world.AddBlock(world.Block{ID: "b", X: 100, Y: 40, Side: 40}),
		world.AddBlock(world.Block{ID: "base", X: 100, Side: 40}),
		world.AssertSupport("base", "b"),
	})
	goal := planner.Goal{Subject: "b", Supporter: "base"}
	require.True(t, planner.Done(goal, s))

	sess, err := NewSession("sess-done", goal, s, planner.Plan{}, OutcomePlanned)
	require.NoError(t, err)
	require.NoError(t, st.RecordRun(ctx, sess))

	res, err := st.Replay(ctx, "sess-done")
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 0, res.Steps)
}

func TestTokenGenerators(t *testing.T) {
	t.Run("uuidv7 tokens are unique", func(t *testing.T) {
		gen := UUIDv7Generator{}
		a, b := gen.Generate(), gen.Generate()
		assert.NotEqual(t, a, b)
		assert.Len(t, a, 36)
	})

	t.Run("fixed tokens come back in order", func(t *testing.T) {
		gen := NewFixedGenerator("t1", "t2")
		assert.Equal(t, "t1", gen.Generate())
		assert.Equal(t, "t2", gen.Generate())
		assert.Panics(t, func() { gen.Generate() })
	})
}
