package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cliRun is the captured result of one in-process CLI invocation.
type cliRun struct {
	stdout string
	stderr string
	code   int
}

// runCLI executes the CLI against the SQLite database at db.
func runCLI(t *testing.T, db string, args ...string) cliRun {
	t.Helper()

	var stdout, stderr bytes.Buffer
	full := append([]string{"--db", db}, args...)
	code := Execute(context.Background(), full, &stdout, &stderr)
	return cliRun{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// decodeResponse parses a JSON response and decodes its data into v.
func decodeResponse(t *testing.T, out string, v any) CLIResponse {
	t.Helper()

	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if v != nil {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

// testDB returns a fresh database path with one repository and one context.
func testDB(t *testing.T) (db string, contextID int64) {
	t.Helper()

	db = filepath.Join(t.TempDir(), "guidectx.db")

	res := runCLI(t, db, "repo", "add", "acme/api")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	res = runCLI(t, db, "--format", "json", "context", "add", "--repo", "acme/api", "style")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var c struct {
		ID int64 `json:"id"`
	}
	decodeResponse(t, res.stdout, &c)
	require.NotZero(t, c.ID)
	return db, c.ID
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "guidectx", cmd.Use)
	assert.Contains(t, cmd.Long, "pending proposal")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"repo", "add"},
		{"repo", "list"},
		{"context", "add"},
		{"context", "list"},
		{"context", "pending"},
		{"guideline", "list"},
		{"guideline", "add"},
		{"guideline", "edit"},
		{"guideline", "toggle"},
		{"guideline", "rm"},
		{"save"},
		{"diff"},
		{"validate"},
		{"cancel"},
		{"gc"},
		{"export"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(filepath.Join(path...), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestContextFlagRequired(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"save", "diff", "validate", "cancel", "export"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)

		flag := sub.Flags().Lookup("context")
		require.NotNil(t, flag, name)
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], name)
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	db := filepath.Join(t.TempDir(), "guidectx.db")

	res := runCLI(t, db, "--format", "invalid", "repo", "list")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "invalid format")
	assert.Empty(t, res.stdout)
}

func TestConfigErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "guidectx.db")

	res := runCLI(t, db, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "repo", "list")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "failed to load config")

	bad := writeFile(t, "bad.yaml", "database:\n  driver: mysql\n")
	res = runCLI(t, db, "--config", bad, "repo", "list")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "failed to load config")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	cfg := writeFile(t, "guidectx.yaml", "database:\n  path: "+db+"\nlog:\n  level: error\n")

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"--config", cfg, "repo", "add", "acme/web"}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Empty(t, stderr.String())

	_, err := os.Stat(db)
	assert.NoError(t, err)
}

func TestUnknownCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "guidectx.db")

	res := runCLI(t, db, "frobnicate")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "unknown command")
}
