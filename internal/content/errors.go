package content

import (
	"errors"
	"fmt"
)

// Failure classes. Match with errors.Is.
var (
	ErrNetwork  = errors.New("content: network error")
	ErrNotFound = errors.New("content: not found")
	ErrParse    = errors.New("content: malformed payload")
)

// Error describes a failed content API call.
type Error struct {
	Kind   error
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
