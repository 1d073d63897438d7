package common

import "fmt"

// Assert checks a condition that must hold if the program is correct, and
// panics if it does not.
//
// Assertions guard invariants: truths about internal state that no input
// should be able to violate. A failed assertion is a bug in this library or
// in a caller that bypassed its constructors, so the useful response is a
// stack trace at the point of the logic error, not an error value the caller
// would have to invent a recovery for. Conditions that ordinary inputs can
// provoke (mismatched schemas, malformed files, unknown names) return errors
// instead.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
