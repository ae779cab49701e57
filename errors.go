package finassist

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the failures of the assistant use cases.
type Kind int

const (
	// InvalidInput is a missing, blank or malformed request field.
	InvalidInput Kind = iota + 1
	// NotFound is an account number with no matching customer.
	NotFound
	// StoreFailure is a read error of the ledger store, including timeouts.
	StoreFailure
	// UpstreamFailure is an error or timeout of the answerer or the sender.
	UpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid-input"
	case NotFound:
		return "not-found"
	case StoreFailure:
		return "store-failure"
	case UpstreamFailure:
		return "upstream-failure"
	default:
		return "unknown"
	}
}

// Error is the error returned by all the assistant use cases.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "verify"
	Msg  string // human readable message, safe to show to the caller
	Err  error  // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the caller facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

// Errorf returns an *Error of the given kind with a formatted message.
func Errorf(kind Kind, op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: cause}
}
