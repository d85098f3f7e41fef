package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/store"
)

// NewContextCommand creates the context command group.
func NewContextCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage guideline contexts",
	}

	cmd.AddCommand(newContextAddCommand(rootOpts))
	cmd.AddCommand(newContextListCommand(rootOpts))
	cmd.AddCommand(newContextPendingCommand(rootOpts))

	return cmd
}

func newContextAddCommand(rootOpts *RootOptions) *cobra.Command {
	var repoName, description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a guideline context in a repository",
		Long: `Create a named guideline context in an existing repository.

Examples:
  guidectx context add --repo acme/api style
  guidectx context add --repo acme/api review --description "Code review rules"`,
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

			repo, err := s.store.GetRepositoryByName(cmd.Context(), repoName)
			if err != nil {
				return f.Fail(err)
			}
			c, err := s.store.CreateContext(cmd.Context(), repo.ID, args[0], description)
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(c, func(w io.Writer) {
				fmt.Fprintf(w, "Context %d: %s/%s\n", c.ID, repo.Name, c.Name)
			})
		},
	}

	cmd.Flags().StringVar(&repoName, "repo", "", "repository name (required)")
	_ = cmd.MarkFlagRequired("repo")
	cmd.Flags().StringVar(&description, "description", "", "context description")

	return cmd
}

func newContextListCommand(rootOpts *RootOptions) *cobra.Command {
	var repoName string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List guideline contexts",
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

			var repoID int64
			if repoName != "" {
				repo, err := s.store.GetRepositoryByName(cmd.Context(), repoName)
				if err != nil {
					return f.Fail(err)
				}
				repoID = repo.ID
			}

			contexts, err := s.store.ListContexts(cmd.Context(), repoID)
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(contexts, func(w io.Writer) {
				printContexts(w, contexts, "No contexts.")
			})
		},
	}

	cmd.Flags().StringVar(&repoName, "repo", "", "only list contexts of this repository")

	return cmd
}

func newContextPendingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "pending",
		Short:         "List contexts with a pending version awaiting review",
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

			contexts, err := s.engine.ListPending(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}

			return f.Result(contexts, func(w io.Writer) {
				printContexts(w, contexts, "No pending versions.")
			})
		},
	}
}

func printContexts(w io.Writer, contexts []store.Context, empty string) {
	if len(contexts) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, c := range contexts {
		if c.Description != "" {
			fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
	}
}
