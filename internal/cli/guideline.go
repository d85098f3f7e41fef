package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/engine"
)

// NewGuidelineCommand creates the guideline command group. Guidelines are
// addressed by the virtual id shown by "guideline list"; edits apply to the
// current version and are refused while a pending version exists.
func NewGuidelineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "guideline",
		Aliases: []string{"g"},
		Short:   "Read and edit the guidelines of a context",
	}

	cmd.AddCommand(newGuidelineListCommand(rootOpts))
	cmd.AddCommand(newGuidelineAddCommand(rootOpts))
	cmd.AddCommand(newGuidelineEditCommand(rootOpts))
	cmd.AddCommand(newGuidelineToggleCommand(rootOpts))
	cmd.AddCommand(newGuidelineRemoveCommand(rootOpts))

	return cmd
}

func addContextFlag(cmd *cobra.Command, contextID *int64) {
	cmd.Flags().Int64Var(contextID, "context", 0, "context id (required)")
	_ = cmd.MarkFlagRequired("context")
}

func parseGuidelineID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid guideline id %q", arg), err)
	}
	return id, nil
}

func newGuidelineListCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64
	var pending bool

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the guidelines of a context with their ids",
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

			guidelines, err := s.engine.Guidelines(cmd.Context(), contextID, pending)
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(guidelines, func(w io.Writer) {
				printGuidelines(w, guidelines)
			})
		},
	}

	addContextFlag(cmd, &contextID)
	cmd.Flags().BoolVar(&pending, "pending", false, "list the pending version instead of the current one")

	return cmd
}

func newGuidelineAddCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64
	var disabled bool

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Append a guideline to the current version",
		Long: `Append a guideline to the current version of a context. A context
without versions gets its first version.

Examples:
  guidectx guideline add --context 1 "Use tabs for indentation"
  guidectx guideline add --context 1 --disabled "Wrap lines at 80 columns"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			s, err := openSession(rootOpts)
			if err != nil {
				return f.Fail(err)
			}
			defer s.Close()

			g, err := s.engine.AddGuideline(cmd.Context(), contextID, args[0], !disabled)
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(g, func(w io.Writer) {
				fmt.Fprintf(w, "Added guideline %d\n", g.ID)
			})
		},
	}

	addContextFlag(cmd, &contextID)
	cmd.Flags().BoolVar(&disabled, "disabled", false, "add the guideline disabled")

	return cmd
}

func newGuidelineEditCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64

	cmd := &cobra.Command{
		Use:           "edit <id> <content>",
		Short:         "Replace the content of a guideline, keeping its flag",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			id, err := parseGuidelineID(args[0])
			if err != nil {
				return f.Fail(err)
			}

			s, err := openSession(rootOpts)
			if err != nil {
				return f.Fail(err)
			}
			defer s.Close()

			g, err := s.engine.UpdateGuideline(cmd.Context(), contextID, id, args[1])
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(g, func(w io.Writer) {
				fmt.Fprintf(w, "Updated guideline %d (new id %d)\n", id, g.ID)
			})
		},
	}

	addContextFlag(cmd, &contextID)

	return cmd
}

func newGuidelineToggleCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64

	cmd := &cobra.Command{
		Use:           "toggle <id>",
		Short:         "Enable a disabled guideline or disable an enabled one",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			id, err := parseGuidelineID(args[0])
			if err != nil {
				return f.Fail(err)
			}

			s, err := openSession(rootOpts)
			if err != nil {
				return f.Fail(err)
			}
			defer s.Close()

			g, err := s.engine.FlipGuideline(cmd.Context(), contextID, id)
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(g, func(w io.Writer) {
				fmt.Fprintf(w, "Guideline %d %s\n", g.ID, stateLabel(g.Active))
			})
		},
	}

	addContextFlag(cmd, &contextID)

	return cmd
}

func newGuidelineRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64

	cmd := &cobra.Command{
		Use:           "rm <id>",
		Aliases:       []string{"remove"},
		Short:         "Remove a guideline from the current version",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			id, err := parseGuidelineID(args[0])
			if err != nil {
				return f.Fail(err)
			}

			s, err := openSession(rootOpts)
			if err != nil {
				return f.Fail(err)
			}
			defer s.Close()

			if err := s.engine.DeleteGuideline(cmd.Context(), contextID, id); err != nil {
				return f.Fail(err)
			}

			return f.Result(map[string]int64{"removed": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed guideline %d\n", id)
			})
		},
	}

	addContextFlag(cmd, &contextID)

	return cmd
}

func stateLabel(active bool) string {
	if active {
		return "enabled"
	}
	return "disabled"
}

func printGuidelines(w io.Writer, guidelines []engine.Guideline) {
	if len(guidelines) == 0 {
		fmt.Fprintln(w, "No guidelines.")
		return
	}
	for _, g := range guidelines {
		mark := " "
		if !g.Active {
			mark = "x"
		}
		// Continuation lines of multi-line entries are indented under the text.
		content := strings.ReplaceAll(g.Content, "\n", "\n"+strings.Repeat(" ", 15))
		fmt.Fprintf(w, "%10d [%s] %s\n", g.ID, mark, content)
	}
}
