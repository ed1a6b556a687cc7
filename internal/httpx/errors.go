package httpx

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers — chiefly the saga engine's retry
// policy — can decide whether to retry, back off, or give up.
type Kind string

const (
	KindTransport          Kind = "transport"
	KindAPI                Kind = "api"
	KindAuth               Kind = "auth"
	KindServer             Kind = "server"
	KindParse              Kind = "parse"
	KindDatabaseAdmission  Kind = "database-admission"
	KindStaticData         Kind = "static-data"
	KindSagaInvalidState   Kind = "saga-invalid-state"
	KindSagaProcessing     Kind = "saga-processing"
)

// Error wraps an underlying cause with a Kind and enough context to log
// without re-deriving it from the call site.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether a retry is worth attempting. Auth failures and
// parse failures are permanent; transport hiccups and 5xx server errors
// are worth a retry; 4xx API errors (other than auth) are permanent too —
// the request itself is wrong, retrying it won't help.
func (e *Error) Temporary() bool {
	switch e.Kind {
	case KindTransport, KindServer:
		return true
	default:
		return false
	}
}

// Wrap builds an *Error, tagging it with op and kind.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsTemporary reports whether err (or a wrapped *Error within it) is worth
// retrying. Errors that aren't our *Error type are treated as permanent —
// only kinds we recognize are given a second chance.
func IsTemporary(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Temporary()
	}
	return false
}
