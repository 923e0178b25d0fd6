package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/squarefactory/lsf-submit/config"
	"github.com/squarefactory/lsf-submit/executor"
	"github.com/squarefactory/lsf-submit/scheduler"
)

// Streams used by the submit and args commands.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

type JobFlags struct {
	Output  string   `short:"o" long:"output" description:"file receiving the job's stdout"`
	Error   string   `short:"e" long:"error" description:"file receiving the job's stderr"`
	JobName string   `short:"J" long:"job-name" description:"job name"`
	Set     []string `short:"O" long:"option" description:"bsub option as key=value, or key alone for a bare switch"`
	Unset   []string `long:"unset" description:"suppress a bsub option, including a default one"`
}

// apply stores the persistent settings on lsf and returns the call-time overrides.
func (f *JobFlags) apply(lsf *scheduler.LSF) (*scheduler.Options, error) {
	switch {
	case f.Output != "" && f.Error != "":
		lsf.SetOutErr(f.Output, f.Error)
	case f.Output != "":
		lsf.Options().Set("o", scheduler.Arg(f.Output))
	case f.Error != "":
		lsf.Options().Set("e", scheduler.Arg(f.Error))
	}
	if f.JobName != "" {
		lsf.SetJobName(f.JobName)
	}
	return parseOverrides(f.Set, f.Unset)
}

func parseOverrides(set, unset []string) (*scheduler.Options, error) {
	overrides := scheduler.NewOptions()
	for _, kv := range set {
		key, value, found := strings.Cut(kv, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid option %q: missing key", kv)
		}
		if found {
			overrides.Set(key, scheduler.Arg(value))
		} else {
			overrides.Set(key, scheduler.Switch())
		}
	}
	for _, key := range unset {
		overrides.Set(key, scheduler.Unset())
	}
	return overrides, nil
}

type SubmitCommand struct {
	Job         JobFlags `group:"Job Options"`
	Interactive bool     `short:"I" long:"interactive" description:"submit with -I -tty and stream output while the job runs"`
	Args        struct {
		Script string `positional-arg-name:"script" description:"job script, read from stdin when omitted"`
	} `positional-args:"yes"`
}

var submitCommand SubmitCommand

func (x *SubmitCommand) Execute(args []string) error {
	cfg, err := config.Load(globalOptions.Config)
	if err != nil {
		return err
	}
	lsf := cfg.NewLSF(&executor.Shell{})
	overrides, err := x.Job.apply(lsf)
	if err != nil {
		return err
	}

	script, err := readScript(x.Args.Script)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout := cfg.SubmitTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if x.Interactive {
		_, err = lsf.SubmitInteractive(ctx, script, stdout, overrides)
		return err
	}
	out, err := lsf.Submit(ctx, script, overrides)
	if _, werr := stdout.Write(out); werr != nil {
		log.Printf("failed to write output: %s", werr)
	}
	return err
}

func readScript(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

type ArgsCommand struct {
	Job         JobFlags `group:"Job Options"`
	Interactive bool     `short:"I" long:"interactive" description:"include the forced interactive flags"`
}

var argsCommand ArgsCommand

// Execute prints the bsub command line without submitting anything.
func (x *ArgsCommand) Execute(args []string) error {
	cfg, err := config.Load(globalOptions.Config)
	if err != nil {
		return err
	}
	lsf := cfg.NewLSF(&executor.Shell{})
	overrides, err := x.Job.apply(lsf)
	if err != nil {
		return err
	}
	layers := []*scheduler.Options{overrides}
	if x.Interactive {
		layers = append(layers, scheduler.InteractiveOptions())
	}
	cmd, err := lsf.Command(layers...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, cmd)
	return err
}

func init() {
	if _, err := parser.AddCommand("submit",
		"Submit a job script",
		"Pipe a job script to bsub with the configured options",
		&submitCommand); err != nil {
		log.Fatal(err)
	}
	if _, err := parser.AddCommand("args",
		"Print the bsub command line",
		"Render the effective options without submitting",
		&argsCommand); err != nil {
		log.Fatal(err)
	}
}
