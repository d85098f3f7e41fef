// Package guideline owns the text format of guideline context versions.
//
// A version is a single blob of guideline entries separated by Delimiter.
// Entries that start with DisabledMarker are inactive. Everything in this
// package is a pure transformation over strings and entry slices; nothing
// here touches storage.
//
// The package is the foundation layer: other internal packages import
// guideline, guideline imports nothing internal.
//
// Components:
//   - codec.go: Decode, Encode, Normalize and the text-level edit helpers
//   - identity.go: content-addressed virtual ids for entries
//   - diff.go: LCS hunks between a current and a pending blob
//   - reconcile.go: flag-correct merge of a confirmed pending blob
package guideline
