package destroy

import (
	"errors"
	"fmt"
)

// TeardownError represents accumulated errors from a best-effort teardown.
type TeardownError struct {
	Errors []error
}

func (e *TeardownError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("teardown encountered %d errors: %v", len(e.Errors), errors.Join(e.Errors...))
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *TeardownError) Unwrap() []error {
	return e.Errors
}

// Add records err if it is non-nil.
func (e *TeardownError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors reports whether any error was recorded.
func (e *TeardownError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrOrNil returns e if it holds errors, nil otherwise.
func (e *TeardownError) ErrOrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}
