package gorouteros

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure the way callers need to branch on it.
type ErrorKind string

const (
	KindConnectionFailed ErrorKind = "connection_failed"
	KindAuthFailed       ErrorKind = "auth_failed"
	KindTrap             ErrorKind = "trap"
	KindFatal            ErrorKind = "fatal"
	KindTimeout          ErrorKind = "timeout"
	KindClosed           ErrorKind = "closed"
	KindProtocol         ErrorKind = "protocol"
)

// Sentinels, one per kind, so callers can use errors.Is without importing
// ErrorKind values.
var (
	ErrConnectionFailed = errors.New(string(KindConnectionFailed))
	ErrAuthFailed       = errors.New(string(KindAuthFailed))
	ErrTrap             = errors.New(string(KindTrap))
	ErrFatal            = errors.New(string(KindFatal))
	ErrTimeout          = errors.New(string(KindTimeout))
	ErrClosed           = errors.New(string(KindClosed))
	ErrProtocol         = errors.New(string(KindProtocol))
)

var sentinelByKind = map[ErrorKind]error{
	KindConnectionFailed: ErrConnectionFailed,
	KindAuthFailed:       ErrAuthFailed,
	KindTrap:             ErrTrap,
	KindFatal:            ErrFatal,
	KindTimeout:          ErrTimeout,
	KindClosed:           ErrClosed,
	KindProtocol:         ErrProtocol,
}

// Error is the structured error every public operation returns on failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("gorouteros: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("gorouteros: %s: %s %v", e.Kind, e.Message, e.Details)
}

func (e *Error) Unwrap() error {
	if s, ok := sentinelByKind[e.Kind]; ok {
		return s
	}
	return nil
}

func newError(kind ErrorKind, message string, details map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func wrapKind(kind ErrorKind, err error) *Error {
	if err == nil {
		return nil
	}
	return newError(kind, err.Error(), nil)
}
