package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/world"
)

// Domain prefixes for content-addressed digests. The version suffix leaves
// room for algorithm migration without colliding with old digests.
const (
	DomainWorld = "gantry/world/v1"
	DomainPlan  = "gantry/plan/v1"
	DomainStep  = "gantry/step/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// WorldDigest computes the content-addressed digest of a snapshot. Two
// snapshots with the same blocks and edges digest identically regardless of
// how they were built.
func WorldDigest(s world.Snapshot) (string, error) {
	cw, err := canonicalWorld(s)
	if err != nil {
		return "", fmt.Errorf("world digest: %w", err)
	}
	canonical, err := MarshalCanonical(cw)
	if err != nil {
		return "", fmt.Errorf("world digest: %w", err)
	}
	return hashWithDomain(DomainWorld, canonical), nil
}

// PlanDigest computes the digest of a plan together with the goal it was
// built for and the world it starts from.
func PlanDigest(g planner.Goal, start world.Snapshot, p planner.Plan) (string, error) {
	cw, err := canonicalWorld(start)
	if err != nil {
		return "", fmt.Errorf("plan digest: %w", err)
	}
	ops := make([]any, len(p))
	for i, o := range p {
		ops[i] = canonicalOp(o)
	}
	canonical, err := MarshalCanonical(map[string]any{
		"goal":  canonicalGoal(g),
		"world": cw,
		"ops":   ops,
	})
	if err != nil {
		return "", fmt.Errorf("plan digest: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// StepDigest computes the digest of one applied plan step: the session it
// belongs to, its index, the operation, and the snapshot the operation
// produced. Replaying a recorded session recomputes these and compares;
// any divergence pins down the exact step where determinism broke.
func StepDigest(session string, idx int, o op.Op, after world.Snapshot) (string, error) {
	cw, err := canonicalWorld(after)
	if err != nil {
		return "", fmt.Errorf("step digest: %w", err)
	}
	canonical, err := MarshalCanonical(map[string]any{
		"session": session,
		"idx":     idx,
		"op":      canonicalOp(o),
		"world":   cw,
	})
	if err != nil {
		return "", fmt.Errorf("step digest: %w", err)
	}
	return hashWithDomain(DomainStep, canonical), nil
}
