package model

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a series could not be analyzed.
type FailureKind string

const (
	KindUnreachable            FailureKind = "UNREACHABLE"
	KindAllAlternatesExhausted FailureKind = "ALL_ALTERNATES_EXHAUSTED"
	KindUnexpectedSchema       FailureKind = "UNEXPECTED_SCHEMA"
	KindNoValidRows            FailureKind = "NO_VALID_ROWS"
	KindDegenerateRegression   FailureKind = "DEGENERATE_REGRESSION"
	KindInsufficientSample     FailureKind = "INSUFFICIENT_SAMPLE"
)

// Failure is a typed pipeline error.
type Failure struct {
	Kind   FailureKind
	Series string
	Code   int
	Err    error
}

// NewFailure builds a Failure with a formatted cause.
func NewFailure(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.Series != "" {
		msg += " [" + f.Series + "]"
	}
	if f.Code != 0 {
		msg += fmt.Sprintf(" code %d", f.Code)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (FailureKind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a Failure of the given kind.
func IsKind(err error, kind FailureKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
