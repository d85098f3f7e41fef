package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/guideline"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var contextID int64
	var pending bool
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the guidelines of a context as a YAML document",
		Long: `Export the current (or pending) version of a context as a YAML guideline
document. The document can be edited and saved back with "save".

Examples:
  guidectx export --context 1 > style.yaml
  guidectx export --context 1 --pending -o proposal.yaml`,
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

			c, err := s.store.GetContext(cmd.Context(), contextID)
			if err != nil {
				return f.Fail(err)
			}
			guidelines, err := s.engine.Guidelines(cmd.Context(), contextID, pending)
			if err != nil {
				return f.Fail(err)
			}

			doc := guideline.Document{Context: c.Name}
			for _, g := range guidelines {
				doc.Guidelines = append(doc.Guidelines, guideline.Entry{Content: g.Content, Active: g.Active})
			}

			if rootOpts.Format == "json" {
				return f.Success(doc)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return f.Fail(WrapExitError(ExitCommandError, "failed to create output file", err))
				}
				defer file.Close()
				w = file
			}
			if err := guideline.WriteDocument(w, doc); err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "failed to write document", err))
			}
			return nil
		},
	}

	addContextFlag(cmd, &contextID)
	cmd.Flags().BoolVar(&pending, "pending", false, "export the pending version")
	cmd.Flags().StringVarP(&output, "output", "o", "-", `output file, or "-" for stdout`)

	return cmd
}
