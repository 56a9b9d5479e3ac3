package apierr

import "fmt"

// Kind classifies a failure for callers: it decides retryability and the
// HTTP status the transport layer maps it to.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindStorage      Kind = "storage"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Invalid(code, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Code: code, Err: fmt.Errorf("%s", msg)}
}

func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Err: fmt.Errorf("%s", msg)}
}

func Forbidden(code, msg string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Err: fmt.Errorf("%s", msg)}
}

func InvalidState(code, msg string) *Error {
	return &Error{Kind: KindInvalidState, Code: code, Err: fmt.Errorf("%s", msg)}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Err: fmt.Errorf("%s", msg)}
}

func Storage(code string, err error) *Error {
	return &Error{Kind: KindStorage, Code: code, Err: err}
}

func Internal(code string, err error) *Error {
	return &Error{Kind: KindInternal, Code: code, Err: err}
}
