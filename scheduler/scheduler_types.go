package scheduler

import (
	"context"
	"io"
)

type Executor interface {
	Exec(ctx context.Context, req *ExecRequest) ([]byte, error)
}

type ExecRequest struct {
	// Binary is the scheduler executable, resolved before spawning.
	Binary string
	// Cmd is the full shell line, binary included. Arguments are already quoted.
	Cmd string
	// User is a UNIX User used for impersonation. Empty means the current user.
	User string
	// Stdin is written to the process and then closed.
	Stdin []byte
	// Tee receives output as it is produced. Optional.
	Tee io.Writer
}
