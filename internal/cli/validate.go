package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/engine"
	"github.com/roach88/guidectx/internal/guideline"
)

// ValidateResult is the JSON payload of the validate command.
type ValidateResult struct {
	VersionID  int64              `json:"version_id"`
	Guidelines []engine.Guideline `json:"guidelines"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Publish the pending version of a context",
		Long: `Publish the pending version as the new current version.

Guidelines whose content is unchanged keep their enabled/disabled flag from
the current version. A guideline edited in place (one entry replaced by one
or more entries) passes its flag on to the replacement.

Exit codes:
  0 - Pending version published
  1 - No pending version, or unknown context
  2 - Command error

Examples:
  guidectx validate --context 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openSession(rootOpts)
			if err != nil {
				return f.Fail(err)
			}
			defer s.Close()

			v, err := s.engine.Validate(cmd.Context(), contextID)
			if err != nil {
				return f.Fail(err)
			}

			f.VerboseLog("published version %d", v.ID)

			res := ValidateResult{
				VersionID:  v.ID,
				Guidelines: engine.WithIDs(contextID, guideline.Decode(v.Content)),
			}
			return f.Result(res, func(w io.Writer) {
				fmt.Fprintf(w, "Published version %d\n", v.ID)
				printGuidelines(w, res.Guidelines)
			})
		},
	}

	addContextFlag(cmd, &contextID)

	return cmd
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Discard the pending version of a context",
		Long: `Discard the pending version, leaving the current version untouched.

Examples:
  guidectx cancel --context 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openSession(rootOpts)
			if err != nil {
				return f.Fail(err)
			}
			defer s.Close()

			if err := s.engine.Cancel(cmd.Context(), contextID); err != nil {
				return f.Fail(err)
			}

			return f.Result(map[string]int64{"context_id": contextID}, func(w io.Writer) {
				fmt.Fprintf(w, "Discarded pending version of context %d\n", contextID)
			})
		},
	}

	addContextFlag(cmd, &contextID)

	return cmd
}

// NewGCCommand creates the gc command.
func NewGCCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Delete versions that hold no guidelines",
		Long: `Delete every version whose content is empty.

An empty current version is kept while its context has a non-empty pending
version, so the proposal can still be reviewed and validated.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openSession(rootOpts)
			if err != nil {
				return f.Fail(err)
			}
			defer s.Close()

			n, err := s.engine.CollectEmpty(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(map[string]int{"deleted": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %d empty versions\n", n)
			})
		},
	}
}
