// Package invariant provides a single assertion helper for conditions that
// must never be false if the rest of this module is implemented correctly
// — the Go equivalent of the original's assert() macro, which the original
// only compiles into debug builds but which this module always checks,
// since a firmware core running with invariants silently disabled is
// exactly the failure mode spec.md's error-handling section warns against.
package invariant

import "fmt"

// Check panics with msg if cond is false.
func Check(cond bool, msg string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("invariant violated: "+msg, args...))
	}
}
