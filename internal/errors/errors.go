package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error. Transports map kinds onto their own
// status codes (see Map and HTTPStatus).
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindExternal
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternal:
		return "external_service"
	case KindSignature:
		return "signature"
	default:
		return "internal"
	}
}

// Error is the single application error type produced by services.
type Error struct {
	Kind Kind
	Msg  string
	Err  error

	sentinel bool
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind, so that
// errors.Is(err, ErrNotFound) works for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.sentinel && t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation, Msg: "validation failed", sentinel: true}
	ErrNotFound   = &Error{Kind: KindNotFound, Msg: "not found", sentinel: true}
	ErrConflict   = &Error{Kind: KindConflict, Msg: "conflict", sentinel: true}
	ErrExternal   = &Error{Kind: KindExternal, Msg: "external service error", sentinel: true}
	ErrSignature  = &Error{Kind: KindSignature, Msg: "invalid signature", sentinel: true}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// External wraps a failed upstream call. msg is what callers see.
func External(msg string, cause error) error {
	return &Error{Kind: KindExternal, Msg: msg, Err: cause}
}

func Signature(msg string) error {
	return &Error{Kind: KindSignature, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
