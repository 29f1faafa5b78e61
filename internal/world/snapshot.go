package world

// Snapshot is an immutable view of the whole world: every block's attributes
// plus the directed supports relation.
//
// The supports relation is stored as an adjacency set keyed by supporter:
// supports[A] is the set of blocks resting directly on A. By construction of
// every operation in this system a block acquires at most one supporter at a
// time, but the schema does not enforce that - a hand-built transaction can
// give a block two supporters, and the Supporters query will faithfully
// return both.
//
// INVARIANTS (maintained by construction, not enforced here):
//   - edges produced by operations form a forest
//   - a block with Y == 0 rests on the ground and has no supporter
//   - a supported block sits exactly on its supporter's top edge
type Snapshot struct {
	blocks      map[ID]Block
	supports    map[ID]map[ID]struct{}
	groundWidth int
}

// New returns an empty snapshot with the given ground width. A width of
// zero or less falls back to DefaultGroundWidth.
func New(groundWidth int) Snapshot {
	if groundWidth <= 0 {
		groundWidth = DefaultGroundWidth
	}
	return Snapshot{
		blocks:      map[ID]Block{},
		supports:    map[ID]map[ID]struct{}{},
		groundWidth: groundWidth,
	}
}

// GroundWidth returns the horizontal extent of usable ground.
func (s Snapshot) GroundWidth() int {
	if s.groundWidth <= 0 {
		return DefaultGroundWidth
	}
	return s.groundWidth
}

// Len returns the number of blocks.
func (s Snapshot) Len() int { return len(s.blocks) }

// Apply returns a new snapshot with the transaction applied. The receiver
// is never modified.
//
// Apply is total: mutations referencing unknown blocks or absent edges are
// silently ignored, and no physical validation is performed. Callers that
// care about legality must check through the operation catalog first.
func (s Snapshot) Apply(tx Transaction) Snapshot {
	next := s.clone()
	for _, m := range tx {
		switch m.Kind {
		case MutAddBlock:
			next.blocks[m.Block.ID] = m.Block
		case MutAssertSupport:
			set, ok := next.supports[m.From]
			if !ok {
				set = map[ID]struct{}{}
				next.supports[m.From] = set
			}
			set[m.To] = struct{}{}
		case MutRetractSupport:
			if set, ok := next.supports[m.From]; ok {
				delete(set, m.To)
				if len(set) == 0 {
					delete(next.supports, m.From)
				}
			}
		case MutSetPosition:
			if b, ok := next.blocks[m.ID]; ok {
				b.X = m.X
				b.Y = m.Y
				next.blocks[m.ID] = b
			}
		}
	}
	return next
}

// clone makes a structural copy deep enough that the original and the copy
// share no mutable state. Worlds are tens of blocks, so a full copy per
// apply is cheap and keeps the value semantics trivially correct.
func (s Snapshot) clone() Snapshot {
	next := Snapshot{
		blocks:      make(map[ID]Block, len(s.blocks)),
		supports:    make(map[ID]map[ID]struct{}, len(s.supports)),
		groundWidth: s.groundWidth,
	}
	for id, b := range s.blocks {
		next.blocks[id] = b
	}
	for from, set := range s.supports {
		cp := make(map[ID]struct{}, len(set))
		for to := range set {
			cp[to] = struct{}{}
		}
		next.supports[from] = cp
	}
	return next
}

// Equal reports whether two snapshots hold the same blocks with the same
// attributes and the same supports edges.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.blocks) != len(o.blocks) {
		return false
	}
	for id, b := range s.blocks {
		ob, ok := o.blocks[id]
		if !ok || b != ob {
			return false
		}
	}
	if s.edgeCount() != o.edgeCount() {
		return false
	}
	for from, set := range s.supports {
		oset := o.supports[from]
		for to := range set {
			if _, ok := oset[to]; !ok {
				return false
			}
		}
	}
	return true
}

func (s Snapshot) edgeCount() int {
	n := 0
	for _, set := range s.supports {
		n += len(set)
	}
	return n
}
