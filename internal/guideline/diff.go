package guideline

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// HunkKind tags a run of entries in a Diff.
type HunkKind string

const (
	HunkUnchanged HunkKind = "unchanged"
	HunkAdded     HunkKind = "added"
	HunkRemoved   HunkKind = "removed"
)

// Hunk is a maximal run of consecutive entries with the same kind.
// Items hold normalized content; flags are resolved by Reconcile, not here.
type Hunk struct {
	Kind  HunkKind `json:"kind" yaml:"kind"`
	Items []string `json:"items" yaml:"items"`
}

// Diff compares the entries of two version blobs at guideline granularity.
//
// Concatenating the items of removed and unchanged hunks in order yields
// the current sequence; added and unchanged hunks yield the pending one.
// Within a change, the removed hunk always precedes the added hunk.
func Diff(currentBlob, pendingBlob string) []Hunk {
	return diffContents(Contents(Decode(currentBlob)), Contents(Decode(pendingBlob)))
}

// diffContents runs a Myers diff over two content sequences by mapping every
// distinct content to one rune and diffing the rune strings.
func diffContents(current, pending []string) []Hunk {
	enc := newRuneTable()
	a := enc.encode(current)
	b := enc.encode(pending)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // minimal diff, no deadline

	hunks := []Hunk{}
	for _, d := range dmp.DiffMainRunes(a, b, false) {
		runes := []rune(d.Text)
		if len(runes) == 0 {
			continue
		}

		kind := HunkUnchanged
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = HunkAdded
		case diffmatchpatch.DiffDelete:
			kind = HunkRemoved
		}

		items := make([]string, len(runes))
		for i, r := range runes {
			items[i] = enc.decode(r)
		}

		if n := len(hunks); n > 0 && hunks[n-1].Kind == kind {
			hunks[n-1].Items = append(hunks[n-1].Items, items...)
			continue
		}
		hunks = append(hunks, Hunk{Kind: kind, Items: items})
	}

	return hunks
}

// runeTable assigns each distinct string a rune, skipping the UTF-16
// surrogate range so runes survive the string round trip inside the differ.
type runeTable struct {
	index   map[string]rune
	strings []string
}

func newRuneTable() *runeTable {
	return &runeTable{index: make(map[string]rune)}
}

func (t *runeTable) encode(items []string) []rune {
	out := make([]rune, len(items))
	for i, s := range items {
		r, ok := t.index[s]
		if !ok {
			r = positionRune(len(t.strings))
			t.index[s] = r
			t.strings = append(t.strings, s)
		}
		out[i] = r
	}
	return out
}

func (t *runeTable) decode(r rune) string {
	pos := int(r)
	if r >= 0xE000 {
		pos -= 0x800
	}
	return t.strings[pos]
}

func positionRune(pos int) rune {
	r := rune(pos)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}
