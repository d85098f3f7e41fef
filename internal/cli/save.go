package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/guideline"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	ContextID int64
	File      string
	YAML      bool
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a full guideline list as the next version of a context",
		Long: `Save a complete replacement guideline list for a context.

The first save creates the current version. A later save creates a pending
version for review; review it with "diff", then "validate" or "cancel" it.
A save is rejected while a pending version exists, or when it matches the
current version exactly.

Input is either a raw blob (entries separated by a line containing -_-_-,
disabled entries prefixed with "[DISABLED] ") or, for .yaml/.yml files or
with --yaml, a guideline document as written by "export".

Exit codes:
  0 - Version saved
  1 - Save rejected (pending version exists, identical content, duplicates)
  2 - Command error (unreadable input, database unavailable)

Examples:
  guidectx save --context 1 --file guidelines.txt
  guidectx save --context 1 --file style.yaml
  cat proposal.txt | guidectx save --context 1 --file -`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, cmd)
		},
	}

	addContextFlag(cmd, &opts.ContextID)
	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", `input file, or "-" for stdin`)
	cmd.Flags().BoolVar(&opts.YAML, "yaml", false, "parse input as a YAML guideline document")

	return cmd
}

func runSave(opts *SaveOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	blob, err := readBlob(opts, cmd.InOrStdin())
	if err != nil {
		return f.Fail(err)
	}

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return f.Fail(err)
	}
	defer s.Close()

	res, err := s.engine.Save(cmd.Context(), opts.ContextID, blob)
	if err != nil {
		return f.Fail(err)
	}

	return f.Result(res, func(w io.Writer) {
		n := len(guideline.Decode(res.Version.Content))
		if res.Pending {
			fmt.Fprintf(w, "Saved pending version %d (%d guidelines). Review with: guidectx diff --context %d\n",
				res.Version.ID, n, opts.ContextID)
			return
		}
		fmt.Fprintf(w, "Saved current version %d (%d guidelines)\n", res.Version.ID, n)
	})
}

// readBlob reads the save input and converts YAML documents to a blob.
func readBlob(opts *SaveOptions, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if opts.File == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opts.File)
	}
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to read input", err)
	}

	ext := strings.ToLower(filepath.Ext(opts.File))
	if !opts.YAML && ext != ".yaml" && ext != ".yml" {
		return string(data), nil
	}

	doc, err := guideline.ReadDocument(bytes.NewReader(data))
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return doc.Blob()
}
