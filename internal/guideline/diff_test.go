package guideline

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff_Identical(t *testing.T) {
	hunks := Diff("A\n-_-_-\nB", "A\n-_-_-\nB")

	assert.Equal(t, []Hunk{
		{Kind: HunkUnchanged, Items: []string{"A", "B"}},
	}, hunks)
}

func TestDiff_BothEmpty(t *testing.T) {
	assert.Empty(t, Diff("", ""))
}

func TestDiff_FromEmpty(t *testing.T) {
	hunks := Diff("", "A\n-_-_-\nB")

	assert.Equal(t, []Hunk{
		{Kind: HunkAdded, Items: []string{"A", "B"}},
	}, hunks)
}

func TestDiff_ToEmpty(t *testing.T) {
	hunks := Diff("A", "")

	assert.Equal(t, []Hunk{
		{Kind: HunkRemoved, Items: []string{"A"}},
	}, hunks)
}

func TestDiff_RemovalInMiddle(t *testing.T) {
	hunks := Diff("A\n-_-_-\nB\n-_-_-\nC", "A\n-_-_-\nC")

	assert.Equal(t, []Hunk{
		{Kind: HunkUnchanged, Items: []string{"A"}},
		{Kind: HunkRemoved, Items: []string{"B"}},
		{Kind: HunkUnchanged, Items: []string{"C"}},
	}, hunks)
}

func TestDiff_ModifyIsRemovalThenAddition(t *testing.T) {
	hunks := Diff("[DISABLED] Old text\n-_-_-\nKeep", "New text\n-_-_-\nKeep")

	assert.Equal(t, []Hunk{
		{Kind: HunkRemoved, Items: []string{"Old text"}},
		{Kind: HunkAdded, Items: []string{"New text"}},
		{Kind: HunkUnchanged, Items: []string{"Keep"}},
	}, hunks)
}

func TestDiff_FlagChangeIsNotAContentChange(t *testing.T) {
	hunks := Diff("A\n-_-_-\nB", "[DISABLED] A\n-_-_-\n  B  ")

	assert.Equal(t, []Hunk{
		{Kind: HunkUnchanged, Items: []string{"A", "B"}},
	}, hunks)
}

func TestDiff_GroupsRuns(t *testing.T) {
	hunks := Diff(
		"A\n-_-_-\nX\n-_-_-\nY\n-_-_-\nB",
		"A\n-_-_-\nZ\n-_-_-\nB",
	)

	assert.Equal(t, []Hunk{
		{Kind: HunkUnchanged, Items: []string{"A"}},
		{Kind: HunkRemoved, Items: []string{"X", "Y"}},
		{Kind: HunkAdded, Items: []string{"Z"}},
		{Kind: HunkUnchanged, Items: []string{"B"}},
	}, hunks)
}

func TestDiff_ReproducesBothSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	pick := func() []Entry {
		n := rng.Intn(8)
		perm := rng.Perm(len(alphabet))[:n]
		entries := make([]Entry, n)
		for i, p := range perm {
			entries[i] = Entry{Content: alphabet[p], Active: rng.Intn(2) == 0}
		}
		return entries
	}

	for i := 0; i < 200; i++ {
		current, pending := pick(), pick()
		hunks := Diff(Encode(current), Encode(pending))

		var gotCurrent, gotPending []string
		for _, h := range hunks {
			assert.NotEmpty(t, h.Items)
			switch h.Kind {
			case HunkUnchanged:
				gotCurrent = append(gotCurrent, h.Items...)
				gotPending = append(gotPending, h.Items...)
			case HunkRemoved:
				gotCurrent = append(gotCurrent, h.Items...)
			case HunkAdded:
				gotPending = append(gotPending, h.Items...)
			}
		}

		assert.Equal(t, Contents(current), nonNil(gotCurrent), "iteration %d", i)
		assert.Equal(t, Contents(pending), nonNil(gotPending), "iteration %d", i)

		for j := 1; j < len(hunks); j++ {
			assert.NotEqual(t, hunks[j-1].Kind, hunks[j].Kind, "adjacent hunks must differ in kind")
		}
	}
}

func TestRuneTable_SkipsSurrogates(t *testing.T) {
	table := newRuneTable()
	items := make([]string, 0xD800+10)
	for i := range items {
		items[i] = string(rune('a'+i%26)) + "-" + strconv.Itoa(i)
	}

	runes := table.encode(items)
	for i, r := range runes {
		assert.False(t, r >= 0xD800 && r < 0xE000, "rune %x is a surrogate", r)
		assert.Equal(t, items[i], table.decode(r))
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
