package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLookup   Phase = "lookup"   // read access
	PhaseMutate   Phase = "mutate"   // write access
	PhaseRegistry Phase = "registry" // layout registry operations
	PhaseConvert  Phase = "convert"  // vanilla <-> struct conversions
	PhasePersist  Phase = "persist"  // layout repository I/O
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds     Kind = "out_of_bounds"
	KindCapExhausted    Kind = "cap_exhausted"
	KindInvalidKeyOrder Kind = "invalid_key_order"
	KindIndexMismatch   Kind = "index_mismatch"
	KindTypeMismatch    Kind = "type_mismatch"
	KindNotFound        Kind = "not_found"
	KindCorruptRecord   Kind = "corrupt_record"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Key    string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Key != "" {
		b.WriteString(" at key ")
		b.WriteString(e.Key)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// New creates an error with a formatted detail message
func New(phase Phase, kind Kind, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{Phase: phase, Kind: kind, Detail: detail}
}

// Wrap creates an error with an underlying cause
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Cause: cause, Detail: detail}
}

// Convenience constructors for common error patterns

// OutOfBoundsStr reports a string key that is not readable in the shape
func OutOfBoundsStr(phase Phase, key string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindOutOfBounds,
		Key:   fmt.Sprintf("%q", key),
	}
}

// OutOfBoundsInt reports an integer key; struct dicts never hold them
func OutOfBoundsInt(phase Phase, key int64) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindOutOfBounds,
		Key:   fmt.Sprintf("%d", key),
	}
}

// NotFound reports a missing record in the layout repository
func NotFound(what string) *Error {
	return &Error{
		Phase:  PhasePersist,
		Kind:   KindNotFound,
		Detail: what + " not found",
	}
}

// CorruptRecord reports an undecodable layout repository record
func CorruptRecord(cause error, detail string) *Error {
	return &Error{
		Phase:  PhasePersist,
		Kind:   KindCorruptRecord,
		Cause:  cause,
		Detail: detail,
	}
}
