package browser

import (
	"fmt"
	"time"
)

// ElementTimeoutError is returned when a selector does not appear within its wait.
type ElementTimeoutError struct {
	Selector string
	Timeout  time.Duration
	Cause    error
}

func (e *ElementTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("element %q not found within %s: %v", e.Selector, e.Timeout, e.Cause)
	}
	return fmt.Sprintf("element %q not found within %s", e.Selector, e.Timeout)
}

func (e *ElementTimeoutError) Unwrap() error {
	return e.Cause
}

// Error represents a failed browser operation other than an element wait.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("browser %s failed: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
