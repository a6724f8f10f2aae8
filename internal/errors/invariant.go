package errors

import (
	"fmt"
	"runtime"
)

// Invariant panics with an *InvariantViolation carrying the caller's
// file/line: arity mismatches, orphaned user-list entries,
// removing a node with live users, a traverser visiting a removed node,
// and operation-family dispatch misses are all programming errors that
// must abort immediately rather than be silently recovered.
func Invariant(format string, args ...any) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	panic(&InvariantViolation{Message: msg, File: file, Line: line})
}

// Check is a guard helper: Invariant(format, args...) iff cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		_, file, line, ok := runtime.Caller(1)
		if !ok {
			file, line = "unknown", 0
		}
		msg := format
		if len(args) > 0 {
			msg = fmt.Sprintf(format, args...)
		}
		panic(&InvariantViolation{Message: msg, File: file, Line: line})
	}
}
