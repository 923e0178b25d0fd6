package scheduler

import (
	"errors"
	"fmt"
)

// ErrSchedulerNotFound is wrapped by SpawnError when the binary can't be resolved.
var ErrSchedulerNotFound = errors.New("scheduler binary not found")

// SpawnError means the scheduler binary could not be launched at all.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %s", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// IOError is a failure writing the script to, or reading output from, the subprocess.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ExitError means the scheduler ran but exited with a failure status,
// typically because it rejected the submission. Err is set when the process
// was killed because its context ended.
type ExitError struct {
	Code   int
	Output []byte
	Err    error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scheduler killed: %s", e.Err)
	}
	return fmt.Sprintf("scheduler exited with status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// EscapeError is an option that cannot be rendered as a safe shell token.
// It is reported before anything is spawned.
type EscapeError struct {
	Key    string
	Reason string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("option -%s: %s", e.Key, e.Reason)
}
