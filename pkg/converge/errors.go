package converge

import (
	"errors"
	"fmt"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Static errors for err113 compliance.
var (
	ErrFatal              = errors.New("fatal response")
	ErrConvergenceTimeout = errors.New("convergence timeout")
	ErrTransport          = errors.New("transport failure")
	ErrUnsupportedUpdate  = errors.New("update mechanism not supported for resource kind")
	ErrEmptyMutation      = errors.New("mutation has nothing to apply")
	ErrNilSender          = errors.New("sender is required")
	ErrNilFetch           = errors.New("fetch function is required")
	ErrUnknownBackoff     = errors.New("unknown backoff")
	ErrInvalidPolicy      = errors.New("invalid convergence policy")
	ErrEmptyResponse      = errors.New("no response from sender")
	ErrNotAnObject        = errors.New("payload is not a JSON object")
)

// FatalHTTPError is an unexpected status on a mutation, or a status other
// than 200/404 on an observation read. It is never retried.
type FatalHTTPError struct {
	Operation  string
	Kind       petstore.Kind
	Ref        petstore.Ref
	StatusCode int
	Body       []byte
}

func (e *FatalHTTPError) Error() string {
	target := string(e.Kind)
	if e.Ref.Valid() {
		target = e.Ref.String()
	}

	if target == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Operation, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: unexpected status %d", e.Operation, target, e.StatusCode)
}

// Is matches ErrFatal.
func (e *FatalHTTPError) Is(target error) bool {
	return target == ErrFatal
}

// APIError returns the store's error envelope, if the body carried one.
func (e *FatalHTTPError) APIError() *petstore.APIError {
	return petstore.ParseAPIError(e.StatusCode, e.Body)
}

// ConvergenceTimeout means the store never reached the expected state.
type ConvergenceTimeout struct {
	Operation string
	Kind      petstore.Kind
	Ref       petstore.Ref
	Attempts  int
	Last      Outcome
}

func (e *ConvergenceTimeout) Error() string {
	target := string(e.Kind)
	if e.Ref.Valid() {
		target = e.Ref.String()
	}

	prefix := e.Operation
	if target != "" {
		prefix += " " + target
	}

	return fmt.Sprintf("%s: not converged after %d attempts, last outcome %s", prefix, e.Attempts, e.Last)
}

// Is matches ErrConvergenceTimeout.
func (e *ConvergenceTimeout) Is(target error) bool {
	return target == ErrConvergenceTimeout
}

// TransportError is a request that never produced an HTTP status. It is
// fatal, never transient.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsTimeout reports whether err is a ConvergenceTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrConvergenceTimeout)
}

// IsFatal reports whether err is a FatalHTTPError.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// target names the subject of a run in errors, logs and events.
type target struct {
	operation string
	kind      petstore.Kind
	ref       petstore.Ref
}

// fail turns a Fatal outcome into the matching error.
func (t target) fail(outcome Outcome) error {
	if outcome.StatusCode == 0 {
		cause := outcome.Err
		if cause == nil {
			cause = ErrEmptyResponse
		}

		return &TransportError{Operation: t.describe(), Err: cause}
	}

	return &FatalHTTPError{
		Operation:  t.operation,
		Kind:       t.kind,
		Ref:        t.ref,
		StatusCode: outcome.StatusCode,
		Body:       outcome.Body,
	}
}

func (t target) timeout(attempts int, last Outcome) error {
	return &ConvergenceTimeout{
		Operation: t.operation,
		Kind:      t.kind,
		Ref:       t.ref,
		Attempts:  attempts,
		Last:      last,
	}
}

func (t target) describe() string {
	switch {
	case t.ref.Valid():
		return t.operation + " " + t.ref.String()
	case t.kind != "":
		return t.operation + " " + string(t.kind)
	default:
		return t.operation
	}
}
