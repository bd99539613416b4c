// Package invariant holds the single assertion helper used across llcsim
// to flag corrupted simulator state. Go has no assert keyword; this plays
// the role the teacher's bounds-checked array accesses play in proto/ooo.
package invariant

import "fmt"

// Assertf panics with a formatted message if cond is false. Reserved for
// state that must never occur if the rest of the package is correct —
// never for input validation, which should return an error instead.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("llcsim: invariant violated: "+format, args...))
	}
}
