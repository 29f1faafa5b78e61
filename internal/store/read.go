package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/trace"
	"github.com/roach88/gantry/internal/world"
)

// ErrSessionNotFound is returned when a token resolves to no session.
var ErrSessionNotFound = errors.New("session not found")

// ReadSession loads one session by token, decoding its world and plan back
// into live values.
func (s *Store) ReadSession(ctx context.Context, token string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, goal_subject, goal_supporter, world, world_digest, plan, plan_digest, outcome
		FROM sessions
		WHERE token = ?
	`, token)

	var (
		sess                Session
		subject, supporter  string
		worldJSON, planJSON string
	)
	err := row.Scan(
		&sess.Token,
		&subject,
		&supporter,
		&worldJSON,
		&sess.WorldDigest,
		&planJSON,
		&sess.PlanDigest,
		&sess.Outcome,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %q: %w", token, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %q: %w", token, err)
	}

	sess.Goal = planner.Goal{Subject: world.ID(subject), Supporter: world.ID(supporter)}
	sess.World, err = trace.UnmarshalWorld([]byte(worldJSON))
	if err != nil {
		return Session{}, fmt.Errorf("read session %q: %w", token, err)
	}
	sess.Plan, err = trace.UnmarshalPlan([]byte(planJSON))
	if err != nil {
		return Session{}, fmt.Errorf("read session %q: %w", token, err)
	}
	return sess, nil
}

// ReadSteps returns a session's recorded steps in deterministic order
// (ORDER BY idx ASC). Returns an empty slice, not nil, when none exist.
func (s *Store) ReadSteps(ctx context.Context, token string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_token, idx, op, world_digest, step_digest
		FROM steps
		WHERE session_token = ?
		ORDER BY idx ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var (
			step   Step
			opJSON string
		)
		if err := rows.Scan(&step.SessionToken, &step.Idx, &opJSON, &step.WorldDigest, &step.StepDigest); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.Op, err = trace.UnmarshalOp([]byte(opJSON))
		if err != nil {
			return nil, fmt.Errorf("decode step %d: %w", step.Idx, err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// ListSessions returns every session token in insertion-friendly order
// (UUIDv7 tokens sort by creation time).
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM sessions ORDER BY token ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, fmt.Errorf("scan session token: %w", err)
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return tokens, nil
}
