package guideline

import (
	"strings"
)

// Blob format constants. Changing either breaks every stored version.
const (
	// Delimiter separates entries. It is wrapped in newlines so a single
	// entry may itself span several lines.
	Delimiter = "\n-_-_-\n"

	// DisabledMarker prefixes the text of an inactive entry.
	DisabledMarker = "[DISABLED] "
)

// Entry is one guideline as decoded from a version blob.
// Entries are never persisted individually.
type Entry struct {
	Content string `json:"content" yaml:"content"`
	Active  bool   `json:"active" yaml:"active"`
}

// Normalize returns the comparison form of content: trimmed, with leading
// DisabledMarker prefixes removed, trimmed again. Toggling an entry or
// re-indenting it never changes its normalized form.
func Normalize(content string) string {
	s := strings.TrimSpace(content)
	for strings.HasPrefix(s, DisabledMarker) {
		s = strings.TrimSpace(s[len(DisabledMarker):])
	}
	return s
}

// Decode parses a version blob into its entries, in blob order.
//
// Decode is total: any text decodes to some list. Sections that are blank
// after normalization are dropped. The empty blob decodes to an empty,
// non-nil slice.
func Decode(blob string) []Entry {
	entries := []Entry{}
	if blob == "" {
		return entries
	}

	for _, section := range strings.Split(blob, Delimiter) {
		content := Normalize(section)
		if content == "" {
			continue
		}
		active := !strings.HasPrefix(strings.TrimSpace(section), DisabledMarker)
		entries = append(entries, Entry{Content: content, Active: active})
	}

	return entries
}

// Encode serializes entries into a version blob. An empty list encodes to "".
func Encode(entries []Entry) string {
	sections := make([]string, len(entries))
	for i, e := range entries {
		if e.Active {
			sections[i] = e.Content
		} else {
			sections[i] = DisabledMarker + e.Content
		}
	}
	return strings.Join(sections, Delimiter)
}

// Canonical re-encodes blob, dropping blank sections and stray whitespace.
func Canonical(blob string) string {
	return Encode(Decode(blob))
}

// Contents returns the normalized content of each entry, in order.
func Contents(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = Normalize(e.Content)
	}
	return out
}

// FindDuplicate returns the first normalized content that appears more than once.
func FindDuplicate(entries []Entry) (string, bool) {
	seen := make(map[string]struct{}, len(entries))
	for _, content := range Contents(entries) {
		if _, ok := seen[content]; ok {
			return content, true
		}
		seen[content] = struct{}{}
	}
	return "", false
}

// Append adds content as a new last entry.
// Fails with ErrCodeDuplicateGuideline if an entry with the same normalized
// content exists, regardless of its flag.
func Append(blob, content string, active bool) (string, error) {
	normalized, err := checkContent(content)
	if err != nil {
		return "", err
	}

	entries := Decode(blob)
	if indexOf(entries, normalized) >= 0 {
		return "", NewDuplicateError(normalized)
	}

	entries = append(entries, Entry{Content: normalized, Active: active})
	return Encode(entries), nil
}

// Update replaces the content of the entry matching target, keeping its flag.
func Update(blob, target, newContent string) (string, error) {
	entries := Decode(blob)
	idx := indexOf(entries, Normalize(target))
	if idx < 0 {
		return "", NewNotFoundError(Normalize(target))
	}

	normalized, err := checkContent(newContent)
	if err != nil {
		return "", err
	}
	if other := indexOf(entries, normalized); other >= 0 && other != idx {
		return "", NewDuplicateError(normalized)
	}

	entries[idx].Content = normalized
	return Encode(entries), nil
}

// Toggle sets the active flag of the entry matching target.
func Toggle(blob, target string, active bool) (string, error) {
	entries := Decode(blob)
	idx := indexOf(entries, Normalize(target))
	if idx < 0 {
		return "", NewNotFoundError(Normalize(target))
	}

	entries[idx].Active = active
	return Encode(entries), nil
}

// Remove deletes the entry matching target.
func Remove(blob, target string) (string, error) {
	entries := Decode(blob)
	idx := indexOf(entries, Normalize(target))
	if idx < 0 {
		return "", NewNotFoundError(Normalize(target))
	}

	entries = append(entries[:idx], entries[idx+1:]...)
	return Encode(entries), nil
}

func checkContent(content string) (string, error) {
	normalized := Normalize(content)
	if normalized == "" {
		return "", NewInvalidContentError(content, "guideline content cannot be empty")
	}
	// A leading or trailing delimiter line would join with a neighbour's
	// separator once encoded.
	if strings.Contains("\n"+normalized+"\n", Delimiter) {
		return "", NewInvalidContentError(content, "guideline content cannot contain the entry delimiter")
	}
	return normalized, nil
}

func indexOf(entries []Entry, normalized string) int {
	for i, e := range entries {
		if Normalize(e.Content) == normalized {
			return i
		}
	}
	return -1
}
