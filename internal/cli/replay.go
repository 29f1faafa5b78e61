package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gantry/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session    string `json:"session"`
	Steps      int    `json:"steps"`
	Match      bool   `json:"match"`
	DivergedAt int    `json:"diverged_at"` // -1 when Match
	Detail     string `json:"detail,omitempty"`
}

// ReplayReport holds the overall replay result.
type ReplayReport struct {
	Sessions []ReplaySessionResult `json:"sessions"`
	Total    int                   `json:"total"`
	AllMatch bool                  `json:"all_match"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded sessions and verify determinism",
		Long: `Re-run recorded sessions from their stored worlds and verify that every
step digest matches what was recorded.

The planner and the apply path are deterministic, so a recorded session
must reproduce exactly. A divergence means the database was tampered with
or determinism broke; the report pins the first bad step.

Exit codes:
  0 - All sessions reproduced exactly
  1 - Divergence detected
  2 - Command error (database not found, unknown session, etc.)

Examples:
  gantry replay --db gantry.db
  gantry replay --db gantry.db --session 0198f2c4-...
  gantry replay --db gantry.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var tokens []string
	if opts.Session != "" {
		tokens = []string{opts.Session}
	} else {
		tokens, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	if len(tokens) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayReport{
				Sessions: []ReplaySessionResult{},
				AllMatch: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	report := ReplayReport{
		Sessions: make([]ReplaySessionResult, 0, len(tokens)),
		Total:    len(tokens),
		AllMatch: true,
	}

	for _, token := range tokens {
		res, err := st.Replay(ctx, token)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", token), err)
		}
		report.Sessions = append(report.Sessions, ReplaySessionResult{
			Session:    res.Token,
			Steps:      res.Steps,
			Match:      res.Match,
			DivergedAt: res.DivergedAt,
			Detail:     res.Detail,
		})
		if !res.Match {
			report.AllMatch = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, report)
	}
	return outputReplayText(cmd, report, opts.Verbose)
}

// outputReplayJSON outputs the replay report as JSON.
func outputReplayJSON(cmd *cobra.Command, report ReplayReport) error {
	response := CLIResponse{
		Status: "ok",
		Data:   report,
	}
	if !report.AllMatch {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DIVERGED",
			Message: "replay diverged from recorded history",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !report.AllMatch {
		return NewExitError(ExitFailure, "replay diverged from recorded history")
	}
	return nil
}

// outputReplayText outputs the replay report as text.
func outputReplayText(cmd *cobra.Command, report ReplayReport, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n\n", report.Total)

	for _, sess := range report.Sessions {
		status := "✓"
		if !sess.Match {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, sess.Session)
		if verbose || !sess.Match {
			fmt.Fprintf(w, "  Steps: %d\n", sess.Steps)
		}
		if !sess.Match {
			fmt.Fprintf(w, "  Diverged at step %d: %s\n", sess.DivergedAt, sess.Detail)
		}
		fmt.Fprintln(w)
	}

	if report.AllMatch {
		fmt.Fprintln(w, "✓ All sessions reproduced exactly")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay diverged from recorded history")
	return NewExitError(ExitFailure, "replay diverged from recorded history")
}
