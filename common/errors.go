package common

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	// SchemaMismatchError indicates that schema shapes disagree: a template
	// placeholder vs the data offered for it, parallel builder arguments of
	// unequal length, or an expression that does not type-check against its
	// input.
	SchemaMismatchError ErrorCode = iota
	// InvalidBindTargetError indicates that the node offered to a bind was
	// not a concrete in-memory data source.
	InvalidBindTargetError
	// SerializeError indicates a malformed, corrupt, or incompatible
	// serialized plan.
	SerializeError
	// DuplicateObjectError indicates an attempt to register a table,
	// template, or output column under a name that is already taken.
	DuplicateObjectError
	// NoSuchObjectError indicates a request for a table, template, or column
	// that does not exist.
	NoSuchObjectError
)

func (ec ErrorCode) String() string {
	switch ec {
	case SchemaMismatchError:
		return "SchemaMismatchError"
	case InvalidBindTargetError:
		return "InvalidBindTargetError"
	case SerializeError:
		return "SerializeError"
	case DuplicateObjectError:
		return "DuplicateObjectError"
	case NoSuchObjectError:
		return "NoSuchObjectError"
	}
	return "unknown"
}

// PlanError is the error type for recoverable failures: conditions a caller
// can provoke with ordinary inputs and is expected to handle. It pairs a
// code the caller can branch on with a detailed message.
//
// Programming errors (dangling arena handles, unreachable variants) are not
// PlanErrors; they panic through Assert.
type PlanError struct {
	Code      ErrorCode
	ErrString string
}

func (e PlanError) Error() string {
	return fmt.Sprintf("err: %s; msg: %s", e.Code.String(), e.ErrString)
}

// Errorf builds a PlanError with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) PlanError {
	return PlanError{Code: code, ErrString: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err if err is, or wraps, a PlanError.
func CodeOf(err error) (ErrorCode, bool) {
	var pe PlanError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return 0, false
}
