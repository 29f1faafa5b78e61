package store

import (
	"context"
	"fmt"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/trace"
)

// ReplayResult reports whether re-running a recorded session reproduced the
// stored history.
type ReplayResult struct {
	Token      string
	Steps      int  // steps compared
	Match      bool // every digest matched
	DivergedAt int  // index of the first mismatch; -1 when Match
	Detail     string
}

// Replay re-runs a recorded session from its stored world through the
// legality-checked apply path, recomputing every step digest and comparing
// against the stored rows.
//
// The planner and the apply path are deterministic, so a recorded session
// must reproduce exactly; a divergence means the store was tampered with,
// the wire decode lost information, or determinism itself broke. The same
// comparison runs on every digest, so the result pins the first bad step.
func (s *Store) Replay(ctx context.Context, token string) (ReplayResult, error) {
	sess, err := s.ReadSession(ctx, token)
	if err != nil {
		return ReplayResult{}, err
	}
	steps, err := s.ReadSteps(ctx, token)
	if err != nil {
		return ReplayResult{}, err
	}

	res := ReplayResult{Token: token, DivergedAt: -1}

	// The stored world must still digest to what was recorded.
	worldDigest, err := trace.WorldDigest(sess.World)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %q: %w", token, err)
	}
	if worldDigest != sess.WorldDigest {
		res.Detail = "stored world does not match its recorded digest"
		return res, nil
	}

	if len(steps) != len(sess.Plan) {
		res.Detail = fmt.Sprintf("plan has %d operations but %d steps were recorded", len(sess.Plan), len(steps))
		return res, nil
	}

	cur := sess.World
	for i, recorded := range steps {
		if recorded.Op != sess.Plan[i] {
			res.DivergedAt = i
			res.Detail = fmt.Sprintf("step %d records %s but the plan says %s", i, recorded.Op, sess.Plan[i])
			return res, nil
		}
		next, err := op.Apply(cur, recorded.Op)
		if err != nil {
			res.DivergedAt = i
			res.Detail = fmt.Sprintf("step %d no longer applies: %v", i, err)
			return res, nil
		}
		stepDigest, err := trace.StepDigest(token, i, recorded.Op, next)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay %q: step %d: %w", token, i, err)
		}
		if stepDigest != recorded.StepDigest {
			res.DivergedAt = i
			res.Detail = fmt.Sprintf("step %d digest mismatch", i)
			return res, nil
		}
		res.Steps++
		cur = next
	}

	res.Match = true
	return res, nil
}
