package op

import "github.com/roach88/gantry/internal/world"

// Check returns nil when the operation is legal against the snapshot, or an
// *IllegalError describing the first violated precondition.
//
// Legality per kind:
//
//	move:    both blocks exist, are distinct, and both are clear
//	clear:   the block exists; a grounded block is a legal no-op; an
//	         elevated block additionally needs open ground space
//	transit: always legal
func Check(s world.Snapshot, o Op) error {
	switch o.Kind {
	case KindMove:
		if _, ok := s.Lookup(o.Moved); !ok {
			return illegalf(ErrCodeNotFound, o, "block %q does not exist", o.Moved)
		}
		if _, ok := s.Lookup(o.Target); !ok {
			return illegalf(ErrCodeNotFound, o, "block %q does not exist", o.Target)
		}
		if o.Moved == o.Target {
			return illegalf(ErrCodeSelfMove, o, "a block cannot support itself")
		}
		if !s.IsClear(o.Moved) {
			return illegalf(ErrCodeNotClear, o, "block %q has blocks on top", o.Moved)
		}
		if !s.IsClear(o.Target) {
			return illegalf(ErrCodeNotClear, o, "block %q has blocks on top", o.Target)
		}
		return nil

	case KindClear:
		moved, ok := s.Lookup(o.Moved)
		if !ok {
			return illegalf(ErrCodeNotFound, o, "block %q does not exist", o.Moved)
		}
		if moved.Y == 0 {
			// Already grounded: legal, and Transaction yields a no-op.
			return nil
		}
		if _, ok := s.FindGroundSpace(moved.Side); !ok {
			return illegalf(ErrCodeNoGroundSpace, o, "no ground stretch of width %d", moved.Side)
		}
		return nil

	case KindTransit:
		return nil
	}
	return illegalf(ErrCodeNotFound, o, "unknown operation kind %q", o.Kind)
}

// IsLegal is the boolean view of Check.
func IsLegal(s world.Snapshot, o Op) bool {
	return Check(s, o) == nil
}

// Transaction returns the store mutations the operation produces against
// the snapshot. It never checks legality - applying the transaction of an
// illegal operation yields a physically inconsistent snapshot, which is
// exactly what the planner's unchecked search path wants. Check first when
// the result must be trusted.
func Transaction(s world.Snapshot, o Op) world.Transaction {
	switch o.Kind {
	case KindMove:
		target, ok := s.Lookup(o.Target)
		if !ok {
			return nil
		}
		tx := retractSupporters(s, o.Moved)
		tx = append(tx,
			world.AssertSupport(o.Target, o.Moved),
			world.SetPosition(o.Moved, target.X, target.Top()),
		)
		return tx

	case KindClear:
		moved, ok := s.Lookup(o.Moved)
		if !ok {
			return nil
		}
		if moved.Y == 0 {
			// Idempotent: already on the ground.
			return nil
		}
		x, ok := s.FindGroundSpace(moved.Side)
		if !ok {
			// No space: keep the horizontal position so the transaction
			// stays well-formed. The legality check rejects this case.
			x = moved.X
		}
		tx := retractSupporters(s, o.Moved)
		return append(tx, world.SetPosition(o.Moved, x, 0))

	case KindTransit:
		return nil
	}
	return nil
}

// retractSupporters detaches a block from whatever currently holds it up.
// Every supporter is retracted, not just the first, so a malformed
// multi-supporter snapshot converges back to the forest shape.
func retractSupporters(s world.Snapshot, id world.ID) world.Transaction {
	var tx world.Transaction
	for _, from := range s.Supporters(id) {
		tx = append(tx, world.RetractSupport(from, id))
	}
	return tx
}

// Apply is the legality-checked path: it rejects illegal operations with an
// *IllegalError and otherwise returns the snapshot with the operation's
// transaction applied. The input snapshot is never mutated either way.
func Apply(s world.Snapshot, o Op) (world.Snapshot, error) {
	if err := Check(s, o); err != nil {
		return world.Snapshot{}, err
	}
	return s.Apply(Transaction(s, o)), nil
}
