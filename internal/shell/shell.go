// Package shell is the convenience wrapper task bodies use to run commands
// through the system shell.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// CommandError reports a command that exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Run executes the command via the system shell with stdout and stderr
// passed through to the process's own streams.
func Run(ctx context.Context, command string) error {
	return RunWith(ctx, command, os.Stdout, os.Stderr)
}

// RunWith executes the command via the system shell with output redirected
// to the given writers.
func RunWith(ctx context.Context, command string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CommandError{Command: command, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("run command %q: %w", command, err)
	}
	return nil
}

// Output executes the command and returns its captured stdout with the
// trailing newline trimmed. Stderr still goes to the process's own stream.
func Output(ctx context.Context, command string) (string, error) {
	var buf bytes.Buffer
	if err := RunWith(ctx, command, &buf, os.Stderr); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
