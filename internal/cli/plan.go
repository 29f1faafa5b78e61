package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gantry/internal/layout"
	"github.com/roach88/gantry/internal/planner"
	"github.com/roach88/gantry/internal/store"
	"github.com/roach88/gantry/internal/world"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Source    WorldSource
	Subject   string
	Supporter string
	MaxSteps  int
	Transits  bool
	Database  string

	// TokenGenerator allows overriding session token generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator store.TokenGenerator
}

// PlanResult is the plan command's output payload.
type PlanResult struct {
	Goal    string   `json:"goal"`
	Outcome string   `json:"outcome"`
	Ops     []string `json:"ops"`
	Final   []string `json:"final,omitempty"`
	Session string   `json:"session,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Search for a plan that stacks one block on another",
		Long: `Search for an operation sequence that puts the subject block on the
supporter block.

The world comes from a CUE layout, a world JSON file, or the seeded
generator. The goal comes from --subject/--supporter, or from the layout
file when it declares one. Every plan is re-validated step by step through
the legality checker before it is reported; with --db the session is also
recorded to SQLite for later replay.

Exit codes:
  0 - Plan found and validated
  1 - Search budget exhausted, or the starting world is inconsistent
  2 - Command error (bad layout, database failure, etc.)

Examples:
  gantry plan --layout world.cue
  gantry plan --seed 7 --subject b03 --supporter b08
  gantry plan --layout world.cue --transits --db gantry.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	opts.Source.AddFlags(cmd)
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "block to place")
	cmd.Flags().StringVar(&opts.Supporter, "supporter", "", "block to place it on")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "search budget (0 = default)")
	cmd.Flags().BoolVar(&opts.Transits, "transits", false, "insert claw travel segments between operations")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the session to this SQLite database")

	return cmd
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if !opts.Verbose {
		logLevel = slog.LevelWarn
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	start, layoutGoal, err := opts.Source.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load world", err)
	}
	slog.Info("world loaded", "blocks", start.Len(), "ground_width", start.GroundWidth())

	goal, err := resolveGoal(opts, layoutGoal)
	if err != nil {
		return WrapExitError(ExitCommandError, "no goal", err)
	}

	// A layout can declare arrangements no claw could have produced;
	// refuse to plan from one.
	if opts.Source.Layout != "" {
		if err := layout.Validate(start); err != nil {
			return WrapExitError(ExitFailure, "starting world is inconsistent", err)
		}
	}

	var solveOpts []planner.Option
	if opts.MaxSteps > 0 {
		solveOpts = append(solveOpts, planner.WithMaxSteps(opts.MaxSteps))
	}

	slog.Info("searching", "goal", goal.String())
	plan, err := planner.Solve(goal, start, solveOpts...)
	switch {
	case planner.IsBudgetExceeded(err):
		return reportBudgetExceeded(opts, cmd, goal, start)
	case err != nil:
		return WrapExitError(ExitCommandError, "search failed", err)
	}
	slog.Info("plan found", "steps", len(plan))

	if err := planner.Validate(start, plan); err != nil {
		return WrapExitError(ExitCommandError, "plan failed validation", err)
	}
	if opts.Transits {
		plan = planner.AddTransits(plan)
	}
	final, err := planner.Replay(start, plan)
	if err != nil {
		return WrapExitError(ExitCommandError, "plan failed replay", err)
	}

	result := PlanResult{
		Goal:    goal.String(),
		Outcome: store.OutcomePlanned,
		Ops:     planStrings(plan),
		Final:   worldLines(final),
	}

	if opts.Database != "" {
		token, err := recordSession(opts, goal, start, plan, store.OutcomePlanned)
		if err != nil {
			return err
		}
		result.Session = token
		slog.Info("session recorded", "token", token, "db", opts.Database)
	}

	return outputPlanResult(opts, cmd, result)
}

// resolveGoal picks the goal from flags, falling back to the layout's.
// Flags must come as a pair; a half-specified goal is an error.
func resolveGoal(opts *PlanOptions, layoutGoal *planner.Goal) (planner.Goal, error) {
	switch {
	case opts.Subject != "" && opts.Supporter != "":
		return planner.Goal{
			Subject:   world.ID(opts.Subject),
			Supporter: world.ID(opts.Supporter),
		}, nil
	case opts.Subject != "" || opts.Supporter != "":
		return planner.Goal{}, fmt.Errorf("--subject and --supporter must be given together")
	case layoutGoal != nil:
		return *layoutGoal, nil
	default:
		return planner.Goal{}, fmt.Errorf("give --subject and --supporter, or a layout with a goal")
	}
}

// reportBudgetExceeded records the exhausted session (with an empty plan,
// matching what the search hands back) and reports the failure.
func reportBudgetExceeded(opts *PlanOptions, cmd *cobra.Command, goal planner.Goal, start world.Snapshot) error {
	result := PlanResult{
		Goal:    goal.String(),
		Outcome: store.OutcomeBudgetExceeded,
		Ops:     []string{},
	}

	if opts.Database != "" {
		token, err := recordSession(opts, goal, start, planner.Plan{}, store.OutcomeBudgetExceeded)
		if err != nil {
			return err
		}
		result.Session = token
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(CLIResponse{
			Status:  "error",
			Error:   &CLIError{Code: "E_BUDGET", Message: "search budget exhausted"},
			Data:    result,
			Session: result.Session,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "No plan for %s: search budget exhausted.\n", result.Goal)
	}

	return NewExitError(ExitFailure, "search budget exhausted")
}

func recordSession(opts *PlanOptions, goal planner.Goal, start world.Snapshot, plan planner.Plan, outcome string) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	gen := opts.TokenGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	sess, err := store.NewSession(gen.Generate(), goal, start, plan, outcome)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to build session record", err)
	}
	if err := st.RecordRun(context.Background(), sess); err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record session", err)
	}
	return sess.Token, nil
}

func outputPlanResult(opts *PlanOptions, cmd *cobra.Command, result PlanResult) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: result, Session: result.Session})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Goal: %s\n", result.Goal)
	if len(result.Ops) == 0 {
		fmt.Fprintln(w, "Already done; nothing to do.")
	} else {
		fmt.Fprintf(w, "Plan (%d operations):\n", len(result.Ops))
		for i, o := range result.Ops {
			fmt.Fprintf(w, "  %d. %s\n", i+1, o)
		}
	}
	fmt.Fprintln(w, "Final arrangement:")
	for _, line := range result.Final {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if result.Session != "" {
		fmt.Fprintf(w, "Recorded session %s\n", result.Session)
	}
	return nil
}

func planStrings(p planner.Plan) []string {
	out := make([]string, len(p))
	for i, o := range p {
		out[i] = o.String()
	}
	return out
}
