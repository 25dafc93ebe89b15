// Package errors provides structured error types for the TidBid server.
// Handlers map the Kind of an error onto an HTTP status.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindConflict
	KindUnauthorized
	KindLimited
	KindStorage
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindLimited:
		return "rate limited"
	case KindStorage:
		return "storage error"
	case KindConfig:
		return "configuration error"
	default:
		return "unknown error"
	}
}

// Error is the structured error type.
type Error struct {
	Op      Op
	Kind    Kind
	Err     error
	Context string
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be an Op, a Kind, a string used as
// context, or the underlying error. With no underlying error the context
// becomes the error text.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}

// Directory errors
func ClientExists(email string) error {
	return E(Op("account.Register"), KindConflict, fmt.Sprintf("client %s already registered", email))
}

func ClientNotFound(email string) error {
	return E(Op("account.Lookup"), KindNotFound, fmt.Sprintf("client %s not found", email))
}

func StorageFailed(op Op, err error) error {
	return E(op, KindStorage, err)
}

// Auth errors
func InvalidCredentials() error {
	return E(Op("account.Authenticate"), KindUnauthorized, "invalid email or password")
}

func RateLimited(key string) error {
	return E(Op("ratelimit.Allow"), KindLimited, fmt.Sprintf("too many requests for %s", key))
}
