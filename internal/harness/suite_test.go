package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSuite_Testdata(t *testing.T) {
	result, err := RunSuite("testdata/scenarios")
	require.NoError(t, err)

	assert.Equal(t, 7, result.TotalScenarios)
	assert.Equal(t, result.TotalScenarios, result.Passed)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.Failures)
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("a_pass.yaml", `
name: pass
description: d
flow: [{ invoke: add, args: { content: A } }]
assertions: [{ type: final_state, versions: 1 }]
`)
	write("b_fail.yml", `
name: fail
description: d
flow: [{ invoke: add, args: { content: A } }]
assertions: [{ type: final_state, versions: 2 }]
`)
	write("c_broken.yaml", "name: broken\n")
	write("notes.txt", "ignored")

	result, err := RunSuite(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalScenarios)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "fail", result.Failures[0].Scenario)
	assert.Contains(t, result.Failures[0].Error, "scenario assertions failed")
	assert.Empty(t, result.Failures[1].Scenario)
	assert.Contains(t, result.Failures[1].Error, "failed to load scenario")
}

func TestRunSuite_MissingDir(t *testing.T) {
	_, err := RunSuite(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
