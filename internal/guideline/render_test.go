package guideline

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHunks_Golden(t *testing.T) {
	hunks := Diff(
		"Prefer small functions\n-_-_-\n[DISABLED] Old text\n-_-_-\nKeep",
		"Prefer small functions\n-_-_-\nNew text\nwith a second line\n-_-_-\nKeep",
	)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "render_modify", []byte(RenderHunks(hunks)))
}

func TestRenderHunks_Empty(t *testing.T) {
	assert.Equal(t, "", RenderHunks(nil))
}

func TestUnifiedDiff_ShowsFlagChanges(t *testing.T) {
	out, err := UnifiedDiff("A\n-_-_-\nB", "[DISABLED] A\n-_-_-\nB", 3)
	require.NoError(t, err)

	assert.Contains(t, out, "--- current")
	assert.Contains(t, out, "+++ pending")
	assert.Contains(t, out, "-A\n")
	assert.Contains(t, out, "+[DISABLED] A\n")
}

func TestUnifiedDiff_Identical(t *testing.T) {
	out, err := UnifiedDiff("A", "  A  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
