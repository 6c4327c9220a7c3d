package api

import (
	"errors"
	"fmt"
)

// Error kinds the handlers map to status codes.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

// opError tags an error with the handler operation and its kind.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	if e.err == nil {
		return e.op + ": " + e.kind.Error()
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *opError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind tags err with op and kind. errors.Is matches both.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// Wrap tags an unexpected err with op as ErrInternal.
func Wrap(op string, err error) error {
	return WrapKind(op, ErrInternal, err)
}
