// Package errors provides structured error types for the bespoke library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type carries the offending key, a detail
// message, and a cause chain.
//
// Recoverable failures - an out-of-bounds key on a throwing access, a
// missing record in the layout repository - are reported with these
// errors. Invariant violations (corrupt headers, index mismatches) are
// programming errors and panic instead.
//
//	err := errors.OutOfBoundsStr(errors.PhaseMutate, "missing")
//	err := errors.OutOfBoundsInt(errors.PhaseLookup, 3)
//
// All errors implement the standard error interface and support
// errors.Is/As; two *Error values match when Phase and Kind agree.
package errors
