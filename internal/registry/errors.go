package registry

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindFetch        ErrorKind = "fetch"
	KindNetwork      ErrorKind = "network"
	KindDecode       ErrorKind = "decode"
)

// Error describes a failed registry request.
type Error struct {
	Kind    ErrorKind
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsKind(err error, kind ErrorKind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

func statusError(url string, status int, serverMessage string) *Error {
	e := &Error{URL: url, Status: status}
	switch status {
	case 401:
		e.Kind = KindUnauthorized
		e.Message = fmt.Sprintf("You are not authorized to access the component at %s.\nPlease run 'tiptap auth login' to authenticate with the registry, or make sure your token is valid.", url)
	case 403:
		e.Kind = KindForbidden
		e.Message = fmt.Sprintf("You do not have access to the component at %s.\nYour account may not have the required subscription plan for this component.\nPlease upgrade your subscription or use a component available in your current plan.", url)
	case 404:
		e.Kind = KindNotFound
		e.Message = fmt.Sprintf("The component at %s was not found.\nIt may not exist at the registry. Please make sure it is a valid component.", url)
	default:
		e.Kind = KindFetch
		e.Message = fmt.Sprintf("Failed to fetch from %s.\n%s", url, serverMessage)
	}
	return e
}
