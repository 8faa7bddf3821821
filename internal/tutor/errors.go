package tutor

import (
	"errors"
	"fmt"
)

// Kind classifies an orchestration failure.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindServiceUnavailable Kind = "service_unavailable"
	KindValidation         Kind = "validation"
	KindInternal           Kind = "internal"
)

// Error is returned by every Service operation. The session is never
// persisted when an operation returns one.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the caller should repeat the same request.
func (e *Error) Retryable() bool {
	return e.Kind == KindServiceUnavailable
}

// KindOf returns the kind of err, KindInternal for foreign errors and ""
// for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternal
}

func notFound(op, id string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("session %s not found", id)}
}

func invalid(op string, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func invalidErr(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func unavailable(op string, err error) *Error {
	return &Error{Kind: KindServiceUnavailable, Op: op, Message: "reasoning service", Err: err}
}

func internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}
