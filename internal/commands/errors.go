package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/devghori1264/aerophoenix/razord/internal/validate"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInfrastructure matches store and transport failures. Callers may
	// retry these; validation and lookup failures are final.
	ErrInfrastructure = errors.New("infrastructure failure")
)

// NotFoundError reports a parameter that references a missing node.
type NotFoundError struct {
	Param string
	Value string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s must be the name of an existing node, but is '%s'", e.Param, e.Value)
}

type infraError struct {
	op  string
	err error
}

func (e *infraError) Error() string        { return fmt.Sprintf("%s: %v", e.op, e.err) }
func (e *infraError) Unwrap() error        { return e.err }
func (e *infraError) Is(target error) bool { return target == ErrInfrastructure }

func infra(op string, err error) error {
	return &infraError{op: op, err: err}
}

// IsRetryable reports whether err belongs to the infrastructure class.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrInfrastructure)
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	var nf *NotFoundError
	switch {
	case err == nil:
		return http.StatusAccepted
	case errors.Is(err, validate.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nf), errors.Is(err, ErrUnknownCommand):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
