package guideline

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// RenderHunks formats hunks for review, one line per content line:
// "  " unchanged, "+ " added, "- " removed.
func RenderHunks(hunks []Hunk) string {
	var b strings.Builder
	for _, h := range hunks {
		prefix := "  "
		switch h.Kind {
		case HunkAdded:
			prefix = "+ "
		case HunkRemoved:
			prefix = "- "
		}
		for _, item := range h.Items {
			for _, line := range strings.Split(item, "\n") {
				b.WriteString(prefix)
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// UnifiedDiff renders a line-level unified diff of the two canonical blobs.
// Unlike Diff it also shows flag changes, since the disabled marker is part
// of the text.
func UnifiedDiff(currentBlob, pendingBlob string, contextLines int) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        blobLines(currentBlob),
		B:        blobLines(pendingBlob),
		FromFile: "current",
		ToFile:   "pending",
		Context:  contextLines,
	})
}

func blobLines(blob string) []string {
	canonical := Canonical(blob)
	if canonical == "" {
		return nil
	}
	return difflib.SplitLines(canonical)
}
