// Package errs implements the error taxonomy shared by every pipeline
// component: a small set of distinct kinds (not Go types) attached to
// the errors components return, so a caller can classify a failure
// with Is.
package errs

import "fmt"

// Kind names one of the error categories a pipeline consumer can
// branch on without depending on component internals.
type Kind string

const (
	// InvalidInput covers asset names too short, topN out of range,
	// or otherwise caller-supplied parameters that fail validation.
	InvalidInput Kind = "invalid_input"
	// InvalidCpeFormat covers a CPE string that fails syntactic
	// checks: legacy 2.2 prefix, missing vendor, bad part.
	InvalidCpeFormat Kind = "invalid_cpe_format"
	// UpstreamUnavailable covers network errors, non-2xx responses and
	// timeouts talking to the NVD catalog.
	UpstreamUnavailable Kind = "upstream_unavailable"
	// UpstreamMalformed covers a catalog reply that isn't valid JSON or
	// is missing the fields the client depends on.
	UpstreamMalformed Kind = "upstream_malformed"
	// PartialNarrowing is not fatal: the orchestrator exhausted its
	// candidates or hit a mid-stream failure and returned its best set.
	PartialNarrowing Kind = "partial_narrowing"
	// Cancelled is consumer-initiated cancellation of a pipeline run.
	Cancelled Kind = "cancelled"
)

// Error wraps an underlying cause with a taxonomy Kind so callers can
// classify a failure with errors.As without depending on component
// internals.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a Kind-tagged error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a Kind-tagged error around an existing cause, preserving
// it for errors.Unwrap the way %w wrapping does.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
