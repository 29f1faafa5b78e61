package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stack builds a snapshot with a single column of n blocks of the given
// side at x, bottom block first: ids[0] on the ground, ids[1] on ids[0], ...
func stack(t *testing.T, x, side int, ids ...ID) Snapshot {
	t.Helper()
	s := New(0)
	var tx Transaction
	for i, id := range ids {
		tx = append(tx, AddBlock(Block{ID: id, X: x, Y: i * side, Side: side}))
		if i > 0 {
			tx = append(tx, AssertSupport(ids[i-1], id))
		}
	}
	return s.Apply(tx)
}

func TestApply_ValueSemantics(t *testing.T) {
	s0 := New(0)
	s1 := s0.Apply(Transaction{AddBlock(Block{ID: "a", X: 10, Side: 40})})

	assert.Equal(t, 0, s0.Len(), "original snapshot must stay empty")
	assert.Equal(t, 1, s1.Len())

	s2 := s1.Apply(Transaction{SetPosition("a", 50, 0)})
	a1, _ := s1.Lookup("a")
	a2, _ := s2.Lookup("a")
	assert.Equal(t, 10, a1.X, "prior snapshot must keep the old position")
	assert.Equal(t, 50, a2.X)
}

func TestApply_Total(t *testing.T) {
	s := New(0)

	// Mutations against unknown blocks and absent edges apply cleanly.
	out := s.Apply(Transaction{
		SetPosition("ghost", 1, 2),
		RetractSupport("ghost", "phantom"),
	})
	assert.Equal(t, 0, out.Len())
	assert.True(t, s.Equal(out))
}

func TestApply_RetractThenAssert(t *testing.T) {
	s := stack(t, 0, 40, "a", "b")

	// Re-seat b: retract before add, the shape every operation uses.
	s2 := s.Apply(Transaction{
		RetractSupport("a", "b"),
		AssertSupport("c", "b"),
	})
	assert.Equal(t, []ID{"c"}, s2.Supporters("b"))
	assert.True(t, s2.IsClear("a"))
}

func TestSupporters_MultipleReturned(t *testing.T) {
	// The schema permits two supporters; the query must report both.
	s := New(0).Apply(Transaction{
		AddBlock(Block{ID: "a", Side: 40}),
		AddBlock(Block{ID: "b", X: 40, Side: 40}),
		AddBlock(Block{ID: "c", X: 20, Y: 40, Side: 40}),
		AssertSupport("a", "c"),
		AssertSupport("b", "c"),
	})
	assert.Equal(t, []ID{"a", "b"}, s.Supporters("c"))
}

func TestClearBlocks_MatchesEdgeSources(t *testing.T) {
	s := stack(t, 0, 40, "a", "b", "c")
	s = s.Apply(Transaction{AddBlock(Block{ID: "d", X: 100, Side: 40})})

	assert.Equal(t, []ID{"c", "d"}, s.ClearBlocks())
	assert.False(t, s.IsClear("a"), "a supports b")
	assert.False(t, s.IsClear("b"), "b supports c")
	assert.True(t, s.IsClear("c"))
}

func TestTransitiveSupportCount(t *testing.T) {
	s := stack(t, 0, 40, "a", "b", "c", "d")

	assert.Equal(t, 3, s.TransitiveSupportCount("a"))
	assert.Equal(t, 1, s.TransitiveSupportCount("c"))
	assert.Equal(t, 0, s.TransitiveSupportCount("d"))
	assert.Equal(t, 0, s.TransitiveSupportCount("missing"))
}

func TestFindSupport_HighestOverlapWins(t *testing.T) {
	s := New(0).Apply(Transaction{
		AddBlock(Block{ID: "low", X: 0, Y: 0, Side: 40}),
		AddBlock(Block{ID: "high", X: 30, Y: 40, Side: 40}),
	})

	// Candidate overlaps both; the taller top must win.
	id, ok := s.FindSupport(Block{ID: "new", X: 20, Side: 40})
	require.True(t, ok)
	assert.Equal(t, ID("high"), id)

	// No horizontal overlap anywhere: ground placement.
	_, ok = s.FindSupport(Block{ID: "new", X: 200, Side: 40})
	assert.False(t, ok)
}

func TestFindGroundSpace(t *testing.T) {
	t.Run("empty world returns zero", func(t *testing.T) {
		x, ok := New(0).FindGroundSpace(40)
		require.True(t, ok)
		assert.Equal(t, 0, x)
	})

	t.Run("skips past occupied spans", func(t *testing.T) {
		s := New(0).Apply(Transaction{
			AddBlock(Block{ID: "a", X: 0, Side: 40}),
			AddBlock(Block{ID: "b", X: 40, Side: 40}),
		})
		x, ok := s.FindGroundSpace(40)
		require.True(t, ok)
		assert.Equal(t, 80, x)
	})

	t.Run("gap too narrow is skipped", func(t *testing.T) {
		s := New(0).Apply(Transaction{
			AddBlock(Block{ID: "a", X: 0, Side: 40}),
			AddBlock(Block{ID: "b", X: 60, Side: 40}),
		})
		x, ok := s.FindGroundSpace(40)
		require.True(t, ok)
		assert.Equal(t, 100, x)
	})

	t.Run("full ground reports no space", func(t *testing.T) {
		s := New(120).Apply(Transaction{
			AddBlock(Block{ID: "a", X: 0, Side: 40}),
			AddBlock(Block{ID: "b", X: 40, Side: 40}),
			AddBlock(Block{ID: "c", X: 80, Side: 40}),
		})
		_, ok := s.FindGroundSpace(40)
		assert.False(t, ok)
	})

	t.Run("stacked blocks do not consume ground", func(t *testing.T) {
		s := stack(t, 0, 40, "a", "b")
		x, ok := s.FindGroundSpace(40)
		require.True(t, ok)
		assert.Equal(t, 40, x)
	})
}

func TestEqual(t *testing.T) {
	a := stack(t, 0, 40, "a", "b")
	b := stack(t, 0, 40, "a", "b")
	assert.True(t, a.Equal(b))

	c := b.Apply(Transaction{SetPosition("b", 0, 99)})
	assert.False(t, a.Equal(c))

	d := b.Apply(Transaction{RetractSupport("a", "b")})
	assert.False(t, a.Equal(d))
}
