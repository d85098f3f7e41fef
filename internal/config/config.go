// Package config loads guidectx settings from a YAML file and the
// environment and validates them against an embedded CUE schema.
//
// Precedence, lowest first: built-in defaults, the YAML file, GUIDECTX_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/guidectx/internal/store"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables read by Load.
const (
	EnvDBDriver = "GUIDECTX_DB_DRIVER"
	EnvDBPath   = "GUIDECTX_DB_PATH"
	EnvDBDSN    = "GUIDECTX_DB_DSN"
	EnvLogLevel = "GUIDECTX_LOG_LEVEL"
)

// Config is the full guidectx configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// DatabaseConfig selects the store driver. Path is used by the SQLite
// drivers, DSN by pgx.
type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path" json:"path"`
	DSN    string `yaml:"dsn" json:"dsn"`
}

// LogConfig controls the slog handler built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
// An empty Textfile disables the export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: store.DriverSQLite3,
			Path:   "guidectx.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the process environment, then validates it.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected; an empty
// document leaves cfg unchanged.
func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDBDriver); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvDBDSN); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks the configuration against the CUE schema, then checks
// that the selected driver has a data source.
func (c Config) Validate() error {
	cctx := cuecontext.New()

	schema := cctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.Unify(cctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", strings.Join(details(err), "; "))
	}

	if _, dsn := c.DataSource(); dsn == "" {
		if c.Database.Driver == store.DriverPostgres {
			return fmt.Errorf("invalid config: database.dsn is required for driver %q", c.Database.Driver)
		}
		return fmt.Errorf("invalid config: database.path is required for driver %q", c.Database.Driver)
	}
	return nil
}

func details(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		out = append(out, e.Error())
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}

// DataSource returns the driver name and the string to open it with.
func (c Config) DataSource() (driver, dsn string) {
	if c.Database.Driver == store.DriverPostgres {
		return c.Database.Driver, c.Database.DSN
	}
	return c.Database.Driver, c.Database.Path
}

// SlogLevel maps Log.Level onto a slog.Level. Unknown levels map to info.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
