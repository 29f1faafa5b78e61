package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gantry/internal/op"
	"github.com/roach88/gantry/internal/trace"
	"github.com/roach88/gantry/internal/world"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Source WorldSource
	Output string
}

// ApplyResult is the apply command's output payload.
type ApplyResult struct {
	Op    string   `json:"op"`
	Final []string `json:"final"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <move|clear|transit> <block> [target]",
		Short: "Apply one checked operation to a world",
		Long: `Apply a single operation to a world through the legality checker.

An illegal operation is refused with its reason; the world is never left
half-mutated. With -o the resulting world is written as JSON, so repeated
applies can be chained through files.

Examples:
  gantry apply --layout world.cue move a b
  gantry apply --world w.json clear c -o w.json
  gantry apply --seed 7 move b01 b05`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args, cmd)
		},
	}

	opts.Source.AddFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write resulting world JSON to file")

	return cmd
}

func runApply(opts *ApplyOptions, args []string, cmd *cobra.Command) error {
	o, err := parseOp(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad operation", err)
	}

	start, _, err := opts.Source.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load world", err)
	}

	next, err := op.Apply(start, o)
	if err != nil {
		var ill *op.IllegalError
		if errors.As(err, &ill) {
			if ferr := formatterFor(opts.RootOptions, cmd).Error(
				"E_ILLEGAL", ill.Error(), string(ill.Code)); ferr != nil {
				return ferr
			}
			return NewExitError(ExitFailure, "operation refused")
		}
		return WrapExitError(ExitCommandError, "apply failed", err)
	}

	if opts.Output != "" {
		data, err := trace.MarshalWorld(next)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to serialize world", err)
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}
	}

	result := ApplyResult{Op: o.String(), Final: worldLines(next)}
	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: result})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Applied: %s\n", result.Op)
	for _, line := range result.Final {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}

// parseOp turns positional arguments into an operation.
func parseOp(args []string) (op.Op, error) {
	kind, moved := args[0], world.ID(args[1])
	switch kind {
	case "move":
		if len(args) != 3 {
			return op.Op{}, fmt.Errorf("move needs a target block")
		}
		return op.Move(moved, world.ID(args[2])), nil
	case "clear":
		if len(args) != 2 {
			return op.Op{}, fmt.Errorf("clear takes no target")
		}
		return op.Clear(moved), nil
	case "transit":
		if len(args) != 3 {
			return op.Op{}, fmt.Errorf("transit needs a destination block")
		}
		return op.Transit(moved, world.ID(args[2])), nil
	default:
		return op.Op{}, fmt.Errorf("unknown operation %q: want move, clear, or transit", kind)
	}
}

// formatterFor builds an OutputFormatter wired to the command's writers.
func formatterFor(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
