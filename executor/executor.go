package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"
	"time"

	"github.com/squarefactory/lsf-submit/scheduler"
)

// Exit statuses sh uses when the command itself could not be run.
const (
	exitNotExecutable = 126
	exitNotFound      = 127
)

// waitDelay bounds how long output is drained after the shell exits or is killed.
const waitDelay = 2 * time.Second

type Shell struct{}

// Exec runs req.Cmd through sh, writes req.Stdin to it and returns stdout and
// stderr combined. Output is drained while the script is written, so a child
// that talks before reading its input cannot deadlock the pipe.
//
// The shell runs in its own process group. When ctx ends the whole group is
// killed, so children that inherited the output pipe cannot hold the call open.
func (*Shell) Exec(ctx context.Context, req *scheduler.ExecRequest) ([]byte, error) {
	if _, err := exec.LookPath(req.Binary); err != nil {
		return nil, &scheduler.SpawnError{
			Binary: req.Binary,
			Err:    fmt.Errorf("%w: %v", scheduler.ErrSchedulerNotFound, err),
		}
	}

	c := exec.CommandContext(ctx, "sh", "-c", req.Cmd)
	log.Printf("exec: %s", req.Cmd)
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if req.User != "" {
		uid, err := lookupUserID(req.User)
		if err != nil {
			return nil, &scheduler.SpawnError{Binary: req.Binary, Err: err}
		}
		c.SysProcAttr.Credential = &syscall.Credential{
			Uid: uid,
		}
	}
	c.Cancel = func() error {
		if err := syscall.Kill(-c.Process.Pid, syscall.SIGKILL); err != nil {
			if errors.Is(err, syscall.ESRCH) {
				return os.ErrProcessDone
			}
			return err
		}
		return nil
	}
	c.WaitDelay = waitDelay

	var out bytes.Buffer
	var sink io.Writer = &out
	if req.Tee != nil {
		sink = io.MultiWriter(&out, req.Tee)
	}
	c.Stdout = sink
	c.Stderr = sink

	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, &scheduler.IOError{Op: "stdin pipe", Err: err}
	}

	if err := c.Start(); err != nil {
		return nil, &scheduler.SpawnError{Binary: req.Binary, Err: err}
	}

	_, writeErr := stdin.Write(req.Stdin)
	if closeErr := stdin.Close(); writeErr == nil {
		writeErr = closeErr
	}
	waitErr := c.Wait()

	var exitErr *exec.ExitError
	isExit := errors.As(waitErr, &exitErr)
	switch {
	case waitErr == nil:
	case ctx.Err() != nil:
		code := -1
		if isExit {
			code = exitErr.ExitCode()
		}
		return out.Bytes(), &scheduler.ExitError{Code: code, Output: out.Bytes(), Err: ctx.Err()}
	case isExit:
		if code := exitErr.ExitCode(); code == exitNotFound || code == exitNotExecutable {
			return out.Bytes(), &scheduler.SpawnError{
				Binary: req.Binary,
				Err:    fmt.Errorf("sh exited with status %d: %s", code, bytes.TrimSpace(out.Bytes())),
			}
		}
		return out.Bytes(), &scheduler.ExitError{Code: exitErr.ExitCode(), Output: out.Bytes()}
	default:
		return out.Bytes(), &scheduler.IOError{Op: "read output", Err: waitErr}
	}
	if writeErr != nil {
		return out.Bytes(), &scheduler.IOError{Op: "write script", Err: writeErr}
	}
	return out.Bytes(), nil
}

func lookupUserID(username string) (uint32, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return 0, err
	}

	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, err
	}

	return uint32(uid), nil
}
