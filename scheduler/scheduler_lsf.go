package scheduler

import (
	"context"
	"io"
	"log"
)

const DefaultBinary = "bsub"

// Flags forced by SubmitInteractive.
const (
	InteractiveKey = "I"
	TTYKey         = "tty"
)

// LSF submits job scripts to IBM Spectrum LSF through bsub.
//
// LSF does no locking. Callers sharing one LSF across goroutines must
// synchronize mutation (SetOutErr, SetJobName, Options().Set) with submissions.
type LSF struct {
	executor Executor
	binary   string
	user     string
	options  *Options
}

type LSFOption func(*LSF)

// WithBinary sets the bsub executable. Empty keeps DefaultBinary.
func WithBinary(binary string) LSFOption {
	return func(s *LSF) {
		if binary != "" {
			s.binary = binary
		}
	}
}

// WithUser runs bsub as the given UNIX user.
func WithUser(user string) LSFOption {
	return func(s *LSF) { s.user = user }
}

// NewLSF creates a client whose options are DefaultOptions merged with overrides.
func NewLSF(
	executor Executor,
	overrides *Options,
	opts ...LSFOption,
) *LSF {
	s := &LSF{
		executor: executor,
		binary:   DefaultBinary,
		options:  DefaultOptions().Merge(overrides),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Options returns the client's persistent options for direct mutation.
func (s *LSF) Options() *Options { return s.options }

func (s *LSF) Binary() string { return s.binary }

// SetOutErr sets the files bsub redirects job stdout and stderr to.
func (s *LSF) SetOutErr(out, errPath string) {
	s.options.Set("o", Arg(out))
	s.options.Set("e", Arg(errPath))
}

// SetJobName sets the scheduler-visible job name.
func (s *LSF) SetJobName(name string) {
	s.options.Set("J", Arg(name))
}

// EffectiveOptions returns the persistent options overridden by each layer in turn.
func (s *LSF) EffectiveOptions(overrides ...*Options) *Options {
	return s.options.Merge(overrides...)
}

// Command returns the shell line that Submit would run.
func (s *LSF) Command(overrides ...*Options) (string, error) {
	args, err := s.EffectiveOptions(overrides...).Render()
	if err != nil {
		return "", err
	}
	bin := quote(s.binary)
	if args == "" {
		return bin, nil
	}
	return bin + " " + args, nil
}

// Submit pipes script to bsub and returns its combined output.
// The output is returned alongside any error the executor reports.
func (s *LSF) Submit(ctx context.Context, script []byte, overrides ...*Options) ([]byte, error) {
	return s.submit(ctx, script, nil, overrides)
}

// SubmitInteractive submits like Submit with -I and -tty forced on. The forced
// flags are applied after overrides, so passing Unset for them has no effect.
// Output is also copied to tee, when non-nil, while the job runs.
func (s *LSF) SubmitInteractive(ctx context.Context, script []byte, tee io.Writer, overrides ...*Options) ([]byte, error) {
	layers := make([]*Options, 0, len(overrides)+1)
	layers = append(layers, overrides...)
	return s.submit(ctx, script, tee, append(layers, InteractiveOptions()))
}

// InteractiveOptions returns the flags SubmitInteractive forces: -I -tty.
func InteractiveOptions() *Options {
	return NewOptions(
		Option{InteractiveKey, Switch()},
		Option{TTYKey, Switch()},
	)
}

func (s *LSF) submit(ctx context.Context, script []byte, tee io.Writer, overrides []*Options) ([]byte, error) {
	cmd, err := s.Command(overrides...)
	if err != nil {
		log.Printf("submit failed: %s", err)
		return nil, err
	}
	out, err := s.executor.Exec(ctx, &ExecRequest{
		Binary: s.binary,
		Cmd:    cmd,
		User:   s.user,
		Stdin:  script,
		Tee:    tee,
	})
	if err != nil {
		log.Printf("submit failed: %s", err)
		return out, err
	}
	return out, nil
}

// HealthCheck runs bsub -V to check that the scheduler can be invoked.
func (s *LSF) HealthCheck(ctx context.Context) error {
	_, err := s.executor.Exec(ctx, &ExecRequest{
		Binary: s.binary,
		Cmd:    quote(s.binary) + " -V",
		User:   s.user,
	})
	if err != nil {
		log.Printf("healthcheck failed: %s", err)
	}
	return err
}
