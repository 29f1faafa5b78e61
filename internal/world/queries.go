package world

import "sort"

// Lookup returns the block with the given ID, or ok=false if no such block
// exists in the snapshot.
func (s Snapshot) Lookup(id ID) (Block, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

// AllBlocks returns every block with its current attributes, sorted by ID
// for deterministic iteration.
func (s Snapshot) AllBlocks() []Block {
	out := make([]Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Supporters returns every block holding up id, sorted by ID. Operations
// only ever produce one supporter per block, but if a hand-built transaction
// created more, all are returned - nothing is silently dropped.
func (s Snapshot) Supporters(id ID) []ID {
	var out []ID
	for from, set := range s.supports {
		if _, ok := set[id]; ok {
			out = append(out, from)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supported returns the blocks resting directly on id, sorted by ID.
func (s Snapshot) Supported(id ID) []ID {
	set, ok := s.supports[id]
	if !ok {
		return nil
	}
	out := make([]ID, 0, len(set))
	for to := range set {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsClear reports whether nothing rests on top of id. Clearness is about a
// block's top, not its bottom: a grounded block buried under a stack is not
// clear, while the stack's summit is.
func (s Snapshot) IsClear(id ID) bool {
	return len(s.supports[id]) == 0
}

// ClearBlocks returns the IDs of every clear block, sorted. Computed as
// all-blocks minus the set of edge sources, so it stays O(blocks + edges)
// rather than O(blocks^2).
func (s Snapshot) ClearBlocks() []ID {
	out := make([]ID, 0, len(s.blocks))
	for id := range s.blocks {
		if len(s.supports[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TransitiveSupportCount returns how many blocks sit above id, directly or
// through intermediate blocks. Zero for a clear block. Used by the planner
// as a proxy for how much digging a buried block still needs.
func (s Snapshot) TransitiveSupportCount(id ID) int {
	seen := map[ID]struct{}{}
	s.collectAbove(id, seen)
	return len(seen)
}

func (s Snapshot) collectAbove(id ID, seen map[ID]struct{}) {
	for to := range s.supports[id] {
		if _, ok := seen[to]; ok {
			continue
		}
		seen[to] = struct{}{}
		s.collectAbove(to, seen)
	}
}

// FindSupport returns, among all blocks whose horizontal interval overlaps
// the candidate's, the one with the greatest top edge. Ties break toward the
// smaller ID so placement stays deterministic. Returns ok=false when nothing
// overlaps, meaning the candidate would rest on the ground.
func (s Snapshot) FindSupport(candidate Block) (ID, bool) {
	var (
		best  ID
		top   int
		found bool
	)
	for _, b := range s.AllBlocks() {
		if b.ID == candidate.ID || !b.Overlaps(candidate) {
			continue
		}
		if !found || b.Top() > top {
			best, top, found = b.ID, b.Top(), true
		}
	}
	return best, found
}

// FindGroundSpace scans ground-resting blocks left to right and returns the
// smallest x >= 0 where a block of the given width overlaps none of them.
// Zero is always the first candidate. The scan is capped at the snapshot's
// ground width; when every position up to the cap is occupied, ok is false.
func (s Snapshot) FindGroundSpace(width int) (int, bool) {
	if width <= 0 {
		return 0, false
	}
	var grounded []Block
	for _, b := range s.blocks {
		if b.Y == 0 {
			grounded = append(grounded, b)
		}
	}
	sort.Slice(grounded, func(i, j int) bool {
		if grounded[i].X != grounded[j].X {
			return grounded[i].X < grounded[j].X
		}
		return grounded[i].ID < grounded[j].ID
	})

	x := 0
	for _, b := range grounded {
		if b.X < x+width && x < b.X+b.Side {
			x = b.X + b.Side
		}
	}
	if x+width > s.GroundWidth() {
		return 0, false
	}
	return x, true
}
