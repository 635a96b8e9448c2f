package registry

import (
	dErrors "discadian/pkg/domain-errors"
)

// FailureKind distinguishes a missing record from an upstream problem.
type FailureKind string

const (
	FailureNotFound FailureKind = "not_found"
	FailureUpstream FailureKind = "upstream"
)

// Result is the uniform outcome of every registry operation. Only Success
// builds a successful Result; the zero value reads as not found. On failure
// Reason carries the failure text (for upstream failures the raw
// "API error <code>" string).
type Result[T any] struct {
	Value  T
	Kind   FailureKind
	Reason string
	ok     bool
}

// Success wraps a value.
func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, ok: true}
}

// NotFound builds a not-found failure.
func NotFound[T any](reason string) Result[T] {
	return Result[T]{Kind: FailureNotFound, Reason: reason}
}

// Upstream builds an upstream failure.
func Upstream[T any](reason string) Result[T] {
	return Result[T]{Kind: FailureUpstream, Reason: reason}
}

// OK reports success.
func (r Result[T]) OK() bool {
	return r.ok
}

// Err converts a failure into a coded domain error; nil on success.
func (r Result[T]) Err() error {
	switch {
	case r.ok:
		return nil
	case r.Kind == FailureUpstream:
		return dErrors.New(dErrors.CodeUpstreamFailure, r.Reason)
	case r.Reason == "":
		return dErrors.New(dErrors.CodeNotFound, "no result")
	default:
		return dErrors.New(dErrors.CodeNotFound, r.Reason)
	}
}
