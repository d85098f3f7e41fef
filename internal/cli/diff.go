package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/engine"
	"github.com/roach88/guidectx/internal/guideline"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	ContextID int64
	Unified   bool
	Lines     int
}

// DiffResult is the JSON payload of the diff command.
type DiffResult struct {
	engine.Comparison
	Unified string `json:"unified,omitempty"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Preview the pending version of a context against the current one",
		Long: `Show how the pending version differs from the current version.

By default guidelines are compared by content: "+" marks added guidelines,
"-" removed ones. Enabling or disabling a guideline is not a content change;
use --unified to see a line diff of the stored text, flags included.

Examples:
  guidectx diff --context 1
  guidectx diff --context 1 --unified`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, cmd)
		},
	}

	addContextFlag(cmd, &opts.ContextID)
	cmd.Flags().BoolVarP(&opts.Unified, "unified", "u", false, "show a unified line diff")
	cmd.Flags().IntVar(&opts.Lines, "lines", 3, "context lines for --unified")

	return cmd
}

func runDiff(opts *DiffOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return f.Fail(err)
	}
	defer s.Close()

	cmp, err := s.engine.Preview(cmd.Context(), opts.ContextID)
	if err != nil {
		return f.Fail(err)
	}

	result := DiffResult{Comparison: cmp}
	if opts.Unified {
		result.Unified, err = guideline.UnifiedDiff(cmp.Current.Content, cmp.Pending.Content, opts.Lines)
		if err != nil {
			return f.Fail(err)
		}
	}

	return f.Result(result, func(w io.Writer) {
		if opts.Unified {
			writeStyled(w, result.Unified, unifiedStyle)
			return
		}
		if len(cmp.Hunks) == 1 && cmp.Hunks[0].Kind == guideline.HunkUnchanged {
			fmt.Fprintln(w, "No content changes (flags may differ; see --unified).")
		}
		writeStyled(w, guideline.RenderHunks(cmp.Hunks), hunkStyle)
	})
}

// diffStyles colors diff lines. The renderer is bound to the output writer,
// so color is dropped when the output is not a terminal.
type diffStyles struct {
	added, removed, header lipgloss.Style
}

func newDiffStyles(w io.Writer) diffStyles {
	r := lipgloss.NewRenderer(w)
	return diffStyles{
		added:   r.NewStyle().Foreground(lipgloss.Color("2")),
		removed: r.NewStyle().Foreground(lipgloss.Color("1")),
		header:  r.NewStyle().Bold(true),
	}
}

func hunkStyle(st diffStyles, line string) string {
	switch {
	case strings.HasPrefix(line, "+ "):
		return st.added.Render(line)
	case strings.HasPrefix(line, "- "):
		return st.removed.Render(line)
	}
	return line
}

func unifiedStyle(st diffStyles, line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
		return st.header.Render(line)
	case strings.HasPrefix(line, "+"):
		return st.added.Render(line)
	case strings.HasPrefix(line, "-"):
		return st.removed.Render(line)
	}
	return line
}

// writeStyled styles text one line at a time; lipgloss pads multi-line
// blocks to a common width.
func writeStyled(w io.Writer, text string, style func(diffStyles, string) string) {
	st := newDiffStyles(w)
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		fmt.Fprint(w, style(st, body))
		if len(body) < len(line) {
			fmt.Fprintln(w)
		}
	}
}
