package guideline

// Reconcile merges a confirmed pending blob against the current blob and
// returns the blob that replaces both.
func Reconcile(currentBlob, pendingBlob string) string {
	return Encode(ReconcileEntries(Decode(currentBlob), Decode(pendingBlob)))
}

// ReconcileEntries walks the diff between current and pending once and
// decides the final flag of every surviving entry:
//
//   - unchanged entries keep the flag they had in current, with pending content
//   - a single removed entry directly followed by additions is a modify: the
//     first added entry takes the removed entry's flag
//   - other added entries keep the flag written in the pending text
//   - removed entries are dropped
//
// A removal of two or more entries never donates its flag.
func ReconcileEntries(current, pending []Entry) []Entry {
	hunks := diffContents(Contents(current), Contents(pending))

	final := make([]Entry, 0, len(pending))
	ci, pi := 0, 0
	for i, h := range hunks {
		switch h.Kind {
		case HunkUnchanged:
			for range h.Items {
				final = append(final, Entry{
					Content: pending[pi].Content,
					Active:  current[ci].Active,
				})
				ci++
				pi++
			}

		case HunkRemoved:
			ci += len(h.Items)

		case HunkAdded:
			modify := i > 0 && hunks[i-1].Kind == HunkRemoved && len(hunks[i-1].Items) == 1
			for j := range h.Items {
				e := pending[pi]
				if j == 0 && modify {
					e.Active = current[ci-1].Active
				}
				final = append(final, e)
				pi++
			}
		}
	}

	return final
}
