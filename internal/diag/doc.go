// Package diag defines the diagnostic model used when building resolved-call
// snapshots.
//
// Construction of a call snapshot either succeeds completely or fails with a
// construction invariant violation. Violations carry a stable Code so the
// resolution side can collect them in a Bag, deduplicate and sort them, and
// render them next to the source span of the offending expression.
//
// Package diag performs no formatting or IO beyond Diagnostic.String.
package diag
