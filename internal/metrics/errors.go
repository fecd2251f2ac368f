package metrics

import (
	"errors"
	"fmt"
)

// ErrorKind classifies aggregation failures for callers that map them onto
// transport responses.
type ErrorKind string

const (
	// ErrKindNodeNotFound means the node id is absent from the backend for
	// the given index and field; no metric work was performed.
	ErrKindNodeNotFound ErrorKind = "node_not_found"

	// ErrKindConfiguration means a requested metric id is unknown in the
	// catalog, or a normalized result key is not a recognized metric.
	ErrKindConfiguration ErrorKind = "configuration"

	// ErrKindModelRequirement means a resolved model needs a cloud id the
	// request does not supply.
	ErrKindModelRequirement ErrorKind = "model_requirement"

	// ErrKindBackendUnavailable means a transport or backend-level failure
	// during the existence check, interval probe or metric query.
	ErrKindBackendUnavailable ErrorKind = "backend_unavailable"

	// ErrKindMalformedResult means the backend response did not match the
	// shape expected by normalization.
	ErrKindMalformedResult ErrorKind = "malformed_result"
)

// Error is the single error type surfaced by the aggregation orchestrator.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or the empty kind when err does
// not originate from this package.
func KindOf(err error) ErrorKind {
	var aggErr *Error
	if errors.As(err, &aggErr) {
		return aggErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func newNodeNotFoundError(nodeID, indexPattern string) *Error {
	return &Error{
		Kind:    ErrKindNodeNotFound,
		Message: fmt.Sprintf("node %q was not found in %q", nodeID, indexPattern),
	}
}

func newConfigurationError(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    ErrKindConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

func newModelRequirementError(id MetricID, nodeType NodeType) *Error {
	return &Error{
		Kind:    ErrKindModelRequirement,
		Message: fmt.Sprintf("metric model %s/%s requires a cloud id but the request does not supply one", id, nodeType),
	}
}

func newBackendUnavailableError(operation string, err error) *Error {
	return &Error{
		Kind:    ErrKindBackendUnavailable,
		Message: fmt.Sprintf("search backend failed during %s", operation),
		Err:     err,
	}
}

func newMalformedResultError(id MetricID, err error) *Error {
	return &Error{
		Kind:    ErrKindMalformedResult,
		Message: fmt.Sprintf("backend response for metric %s does not match the expected shape", id),
		Err:     err,
	}
}
