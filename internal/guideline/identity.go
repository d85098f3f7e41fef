package guideline

import (
	"strconv"
	"unicode/utf16"
)

// VirtualID computes the identifier external layers use to address an entry.
//
// The id is derived from the context and the normalized content only, so it
// is stable across re-decoding and position changes, and it changes whenever
// the content is edited. Two entries with the same normalized content in one
// context share an id; duplicate content is rejected at write time instead.
func VirtualID(contextID int64, content string) int64 {
	inner := stringHash(Normalize(content))
	return stringHash(strconv.FormatInt(contextID, 10) + "-" + strconv.FormatInt(inner, 10))
}

// Resolve returns the first entry whose virtual id in contextID equals id.
func Resolve(entries []Entry, contextID, id int64) (Entry, bool) {
	for _, e := range entries {
		if VirtualID(contextID, e.Content) == id {
			return e, true
		}
	}
	return Entry{}, false
}

// stringHash is the 31-multiplier polynomial hash over UTF-16 code units,
// wrapped to int32 on every step and folded to a non-negative value.
// Ids already handed out depend on this exact arithmetic.
func stringHash(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
