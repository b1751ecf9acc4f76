package task

import (
	"context"
	"errors"
	"fmt"
)

type ErrorKind string

const ERROR_FAILED ErrorKind = "Task.Failed"
const ERROR_TIMEOUT ErrorKind = "Task.Timeout"
const ERROR_TERMINAL ErrorKind = "Task.Terminal"

// ERROR_ALL only appears in retry policies, it matches every kind except
// ERROR_TERMINAL.
const ERROR_ALL ErrorKind = "Task.ALL"

func ValidateErrorKind(kind string) error {
	switch ErrorKind(kind) {
	case ERROR_FAILED, ERROR_TIMEOUT, ERROR_TERMINAL, ERROR_ALL:
		return nil
	}
	return fmt.Errorf("unknown error kind %s", kind)
}

type Error struct {
	Kind    ErrorKind
	Task    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("task %s failed with %s: %s: %v", e.Task, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("task %s failed with %s: %s", e.Task, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Failed(message string) error {
	return &Error{Kind: ERROR_FAILED, Message: message}
}

func Terminal(message string) error {
	return &Error{Kind: ERROR_TERMINAL, Message: message}
}

func Timeout(message string) error {
	return &Error{Kind: ERROR_TIMEOUT, Message: message}
}

// KindOf classifies err. Errors that are not *Error count as ERROR_FAILED.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) && len(te.Kind) > 0 {
		return te.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ERROR_TIMEOUT
	}
	return ERROR_FAILED
}
