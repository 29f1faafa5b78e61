package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gantry/internal/layout"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Source WorldSource
}

// ValidateResult is the validate command's output payload.
type ValidateResult struct {
	Blocks     int      `json:"blocks"`
	Consistent bool     `json:"consistent"`
	Violations []string `json:"violations,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a world for physical consistency",
		Long: `Check a world against the invariants every claw-built arrangement
satisfies: at most one supporter per block, no floating blocks, exact
seating on the supporter's top face, and no support cycles.

All violations are reported, not just the first.

Exit codes:
  0 - World is consistent
  1 - Violations found
  2 - Command error (bad layout file, etc.)

Examples:
  gantry validate --layout world.cue
  gantry validate --world w.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	opts.Source.AddFlags(cmd)

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	s, _, err := opts.Source.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load world", err)
	}

	result := ValidateResult{Blocks: s.Len(), Consistent: true}
	if err := layout.Validate(s); err != nil {
		var verr *layout.ValidationError
		if !errors.As(err, &verr) {
			return WrapExitError(ExitCommandError, "validation failed", err)
		}
		result.Consistent = false
		for _, v := range verr.Violations {
			result.Violations = append(result.Violations, v.String())
		}
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Consistent {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_INCONSISTENT", Message: "world violates stacking invariants"}
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if result.Consistent {
			fmt.Fprintf(w, "✓ World consistent (%d blocks)\n", result.Blocks)
		} else {
			fmt.Fprintf(w, "✗ World inconsistent (%d violations):\n", len(result.Violations))
			for _, v := range result.Violations {
				fmt.Fprintf(w, "  %s\n", v)
			}
		}
	}

	if !result.Consistent {
		return NewExitError(ExitFailure, "world violates stacking invariants")
	}
	return nil
}
