package store

import (
	"context"
	"fmt"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/trace"
	"github.com/roach88/gantry/internal/world"
)

// Session outcomes.
const (
	OutcomePlanned        = "planned"
	OutcomeBudgetExceeded = "budget_exceeded"
)

// Session is one recorded planning run.
type Session struct {
	Token       string
	Goal        planner.Goal
	World       world.Snapshot
	WorldDigest string
	Plan        planner.Plan
	PlanDigest  string
	Outcome     string
}

// Step is one recorded plan application.
type Step struct {
	SessionToken string
	Idx          int
	Op           op.Op
	WorldDigest  string
	StepDigest   string
}

// NewSession assembles a session record with its digests computed. Outcome
// should be OutcomePlanned for a validated plan and OutcomeBudgetExceeded
// when recording the partial plan of an exhausted search.
func NewSession(token string, g planner.Goal, start world.Snapshot, p planner.Plan, outcome string) (Session, error) {
	worldDigest, err := trace.WorldDigest(start)
	if err != nil {
		return Session{}, fmt.Errorf("new session: %w", err)
	}
	planDigest, err := trace.PlanDigest(g, start, p)
	if err != nil {
		return Session{}, fmt.Errorf("new session: %w", err)
	}
	return Session{
		Token:       token,
		Goal:        g,
		World:       start,
		WorldDigest: worldDigest,
		Plan:        p,
		PlanDigest:  planDigest,
		Outcome:     outcome,
	}, nil
}

// WriteSession inserts a session record. Uses ON CONFLICT(token) DO NOTHING
// for idempotency - recording the same session twice is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	worldJSON, err := trace.MarshalWorld(sess.World)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	planJSON, err := trace.MarshalPlan(sess.Plan)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(token, goal_subject, goal_supporter, world, world_digest, plan, plan_digest, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		sess.Token,
		string(sess.Goal.Subject),
		string(sess.Goal.Supporter),
		string(worldJSON),
		sess.WorldDigest,
		string(planJSON),
		sess.PlanDigest,
		sess.Outcome,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteStep inserts one applied-step record. Idempotent on
// (session_token, idx): re-recording a step is a no-op.
//
// The session referenced by SessionToken must exist (foreign key).
func (s *Store) WriteStep(ctx context.Context, step Step) error {
	opJSON, err := trace.MarshalOp(step.Op)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO steps
		(session_token, idx, op, world_digest, step_digest)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_token, idx) DO NOTHING
	`,
		step.SessionToken,
		step.Idx,
		string(opJSON),
		step.WorldDigest,
		step.StepDigest,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}

// RecordRun writes a session and plays its plan forward through the
// legality-checked apply path, writing one step row per operation. This is
// the one place where planning output turns into durable history.
func (s *Store) RecordRun(ctx context.Context, sess Session) error {
	if err := s.WriteSession(ctx, sess); err != nil {
		return err
	}

	cur := sess.World
	for i, o := range sess.Plan {
		next, err := op.Apply(cur, o)
		if err != nil {
			return fmt.Errorf("record run: step %d: %w", i, err)
		}
		worldDigest, err := trace.WorldDigest(next)
		if err != nil {
			return fmt.Errorf("record run: step %d: %w", i, err)
		}
		stepDigest, err := trace.StepDigest(sess.Token, i, o, next)
		if err != nil {
			return fmt.Errorf("record run: step %d: %w", i, err)
		}
		err = s.WriteStep(ctx, Step{
			SessionToken: sess.Token,
			Idx:          i,
			Op:           o,
			WorldDigest:  worldDigest,
			StepDigest:   stepDigest,
		})
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}
