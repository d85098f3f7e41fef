package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/guidectx/internal/config"
	"github.com/roach88/guidectx/internal/engine"
	"github.com/roach88/guidectx/internal/metrics"
	"github.com/roach88/guidectx/internal/store"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger resolved from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides database.path (sqlite) or database.dsn (pgx)

	config config.Config
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the guidectx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "guidectx",
		Short: "guidectx - versioned guideline contexts",
		Long: `Manage guideline contexts for code repositories.

Each context holds a current version of its guidelines and at most one
pending proposal. Save a proposal, review it with diff, then validate it
to publish or cancel it to discard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database path (sqlite) or DSN (pgx); overrides config")

	// Add subcommands
	cmd.AddCommand(NewRepoCommand(opts))
	cmd.AddCommand(NewContextCommand(opts))
	cmd.AddCommand(NewGuidelineCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))
	cmd.AddCommand(NewGCCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors not already reported by a command are printed to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitCommandError
	}
	if !exitErr.Reported {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitErr.Code
}

// resolve validates global flags, loads the configuration and builds the
// logger. Diagnostics go to stderr so they never mix with command output.
func (o *RootOptions) resolve(stderr io.Writer) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		if cfg.Database.Driver == store.DriverPostgres {
			cfg.Database.DSN = o.Database
		} else {
			cfg.Database.Path = o.Database
		}
	}
	o.config = cfg
	o.logger = newLogger(stderr, cfg, o.Verbose)
	return nil
}

func newLogger(w io.Writer, cfg config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// session is the per-command wiring of store, engine and metrics.
type session struct {
	store    *store.Store
	engine   *engine.Engine
	metrics  *metrics.Metrics
	textfile string
	logger   *slog.Logger
}

// openSession opens the configured store and builds an engine on it.
func openSession(opts *RootOptions) (*session, error) {
	driver, dsn := opts.config.DataSource()

	st, err := store.OpenWith(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.New()
	return &session{
		store:    st,
		engine:   engine.New(st, engine.WithLogger(logger), engine.WithMetrics(m)),
		metrics:  m,
		textfile: opts.config.Metrics.Textfile,
		logger:   logger,
	}, nil
}

// Close writes the metrics textfile, if configured, and closes the store.
func (s *session) Close() {
	if err := s.metrics.WriteTextfile(s.textfile); err != nil {
		s.logger.Warn("failed to write metrics textfile", "path", s.textfile, "error", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close database", "error", err)
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
