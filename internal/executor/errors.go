package executor

import "fmt"

// ExecutionError wraps a task body failure with the failing task's name.
type ExecutionError struct {
	Task string
	Err  error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task, e.Err)
}

// Unwrap returns the underlying body error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
