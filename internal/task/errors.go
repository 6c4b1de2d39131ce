package task

import "fmt"

// RegistrationError reports a task definition the registry refused to accept.
type RegistrationError struct {
	Task string
	Msg  string
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("task %q: %s", e.Task, e.Msg)
}

func regErrorf(taskName, format string, args ...any) error {
	return &RegistrationError{Task: taskName, Msg: fmt.Sprintf(format, args...)}
}

// UnknownTargetError reports a target string that matches neither a task
// name nor an owned output path.
type UnknownTargetError struct {
	Target string
}

// Error implements the error interface.
func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target: %s", e.Target)
}
