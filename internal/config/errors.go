package config

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindMissing    ErrorKind = "missing"
	KindInvalid    ErrorKind = "invalid"
	KindTSConfig   ErrorKind = "tsconfig"
	KindUnresolved ErrorKind = "unresolved_alias"
)

// Error is returned for any problem that leaves the project config unusable.
type Error struct {
	Kind       ErrorKind
	Path       string
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, path, message string, err error) *Error {
	e := &Error{Kind: kind, Path: path, Message: message, Err: err}
	switch kind {
	case KindMissing, KindInvalid:
		e.Suggestion = "Run the init command to create a valid components.json."
	case KindTSConfig, KindUnresolved:
		e.Suggestion = "Check the compilerOptions.paths entries in your tsconfig.json or jsconfig.json."
	}
	return e
}

// IsKind reports whether err is a config *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}
