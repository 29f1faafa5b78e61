package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gantry/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
}

// TraceStep is one recorded step in the trace output.
type TraceStep struct {
	Idx         int    `json:"idx"`
	Op          string `json:"op"`
	WorldDigest string `json:"world_digest"`
	StepDigest  string `json:"step_digest"`
}

// TraceResult is the trace command's output payload.
type TraceResult struct {
	Session     string      `json:"session"`
	Goal        string      `json:"goal"`
	Outcome     string      `json:"outcome"`
	WorldDigest string      `json:"world_digest"`
	PlanDigest  string      `json:"plan_digest"`
	Steps       []TraceStep `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded history of a session",
		Long: `Show a recorded session: its goal, outcome, digests, and every applied
step in order.

Examples:
  gantry trace --db gantry.db --session 0198f2c4-...
  gantry trace --db gantry.db --session 0198f2c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	sess, err := st.ReadSession(ctx, opts.Session)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("no session %s", opts.Session), err)
		}
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}
	steps, err := st.ReadSteps(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{
		Session:     sess.Token,
		Goal:        sess.Goal.String(),
		Outcome:     sess.Outcome,
		WorldDigest: sess.WorldDigest,
		PlanDigest:  sess.PlanDigest,
		Steps:       make([]TraceStep, 0, len(steps)),
	}
	for _, step := range steps {
		result.Steps = append(result.Steps, TraceStep{
			Idx:         step.Idx,
			Op:          step.Op.String(),
			WorldDigest: step.WorldDigest,
			StepDigest:  step.StepDigest,
		})
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: result, Session: result.Session})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session: %s\n", result.Session)
	fmt.Fprintf(w, "Goal: %s\n", result.Goal)
	fmt.Fprintf(w, "Outcome: %s\n", result.Outcome)
	if opts.Verbose {
		fmt.Fprintf(w, "World digest: %s\n", result.WorldDigest)
		fmt.Fprintf(w, "Plan digest: %s\n", result.PlanDigest)
	}
	if len(result.Steps) == 0 {
		fmt.Fprintln(w, "No steps recorded.")
		return nil
	}
	fmt.Fprintf(w, "Steps (%d):\n", len(result.Steps))
	for _, step := range result.Steps {
		if opts.Verbose {
			fmt.Fprintf(w, "  %d. %s  [%s]\n", step.Idx, step.Op, step.StepDigest)
		} else {
			fmt.Fprintf(w, "  %d. %s\n", step.Idx, step.Op)
		}
	}
	return nil
}
