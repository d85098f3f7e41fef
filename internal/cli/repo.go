package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/store"
)

// NewRepoCommand creates the repo command group.
func NewRepoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
	}

	cmd.AddCommand(newRepoAddCommand(rootOpts))
	cmd.AddCommand(newRepoListCommand(rootOpts))

	return cmd
}

func newRepoAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Register a repository",
		Long: `Register a repository by name. Names are trimmed and Unicode
NFC-normalized, so composed and decomposed spellings are the same repository.

Examples:
  guidectx repo add acme/api`,
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

			repo, err := s.store.CreateRepository(cmd.Context(), args[0])
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(repo, func(w io.Writer) {
				fmt.Fprintf(w, "Repository %d: %s\n", repo.ID, repo.Name)
			})
		},
	}
}

func newRepoListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List repositories",
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

			repos, err := s.store.ListRepositories(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(repos, func(w io.Writer) {
				printRepositories(w, repos)
			})
		},
	}
}

func printRepositories(w io.Writer, repos []store.Repository) {
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories.")
		return
	}
	for _, r := range repos {
		fmt.Fprintf(w, "%d\t%s\n", r.ID, r.Name)
	}
}
