package supervisor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyArgv is returned by Start when the command has no program.
	ErrEmptyArgv = errors.New("command has no argv")
	// ErrTaskNotFound is returned for ids that are not tracked.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskNotRunning is returned when input is fed to a task without a live process.
	ErrTaskNotRunning = errors.New("task is not running")
	// ErrTaskRunning is returned when removing a task that still owns a process.
	ErrTaskRunning = errors.New("task is still running")
	// ErrEmptyLog is wrapped by ExportError when there is nothing to export.
	ErrEmptyLog = errors.New("log is empty")
)

// SpawnError reports a process that could not be started.
type SpawnError struct {
	Argv []string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExportError reports a log export that could not be written.
type ExportError struct {
	TaskID string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export task %s: %v", e.TaskID, e.Err)
	}
	return fmt.Sprintf("export task %s to %s: %v", e.TaskID, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
