//go:build unit

package scheduler_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/squarefactory/lsf-submit/mocks"
	"github.com/squarefactory/lsf-submit/scheduler"
	"github.com/squarefactory/lsf-submit/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var defaultArgs = []string{
	"-R", "rusage[mem=4000] span[hosts=1]",
	"-m", "manda",
	"-P", "acc_PBG",
	"-W", "24:00",
	"-L", "/bin/bash",
	"-n", "16",
}

type ServiceTestSuite struct {
	suite.Suite
	executor *mocks.Executor
	impl     *scheduler.LSF
}

func (suite *ServiceTestSuite) BeforeTest(suiteName, testName string) {
	suite.executor = mocks.NewExecutor(suite.T())
	suite.impl = scheduler.NewLSF(
		suite.executor,
		opts("q", "short"),
	)
}

// words splits a rendered command line back into argv.
func (suite *ServiceTestSuite) words(cmd string) []string {
	w, err := shellquote.Split(cmd)
	suite.Require().NoError(err)
	return w
}

// pairs maps each -flag in argv to its value, or "" for bare switches.
func pairs(argv []string) map[string]string {
	out := make(map[string]string)
	for i := 0; i < len(argv); i++ {
		if !strings.HasPrefix(argv[i], "-") {
			continue
		}
		if i+1 < len(argv) && !strings.HasPrefix(argv[i+1], "-") {
			out[argv[i]] = argv[i+1]
			i++
		} else {
			out[argv[i]] = ""
		}
	}
	return out
}

func (suite *ServiceTestSuite) TestSubmit() {
	// Arrange
	script := []byte("echo hi")
	expectedOutput := []byte("Job <123> is submitted to queue <short>.\n")
	var got *scheduler.ExecRequest
	suite.executor.On(
		"Exec",
		mock.Anything,
		mock.MatchedBy(func(req *scheduler.ExecRequest) bool {
			got = req
			return req.Binary == "bsub" && bytes.Equal(req.Stdin, script)
		}),
	).Return(expectedOutput, nil)
	ctx := context.Background()

	// Act
	out, err := suite.impl.Submit(ctx, script)

	// Assert
	suite.NoError(err)
	suite.Equal(expectedOutput, out)
	suite.Nil(got.Tee)
	argv := suite.words(got.Cmd)
	suite.Equal("bsub", argv[0])
	args := pairs(argv[1:])
	suite.Equal("short", args["-q"])
	for i := 0; i < len(defaultArgs); i += 2 {
		suite.Equal(defaultArgs[i+1], args[defaultArgs[i]], defaultArgs[i])
	}
	suite.Len(argv, 1+len(defaultArgs)+2)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestSubmitWithOverrides() {
	// Arrange
	name := utils.GenerateRandomString(6)
	suite.executor.On(
		"Exec",
		mock.Anything,
		mock.MatchedBy(func(req *scheduler.ExecRequest) bool {
			args := pairs(suite.words(req.Cmd)[1:])
			_, hasMail := args["-m"]
			return args["-J"] == name &&
				args["-q"] == "long" &&
				!hasMail
		}),
	).Return([]byte("ok"), nil)
	ctx := context.Background()

	// Act
	_, err := suite.impl.Submit(ctx, []byte("sleep 1"),
		opts("J", name, "q", "long"),
		opts("m", false),
	)

	// Assert
	suite.NoError(err)
	q, _ := suite.impl.Options().Get("q")
	suite.Equal("short", q.String(), "call-time overrides must not persist")
	_, ok := suite.impl.Options().Get("J")
	suite.False(ok)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestSetOutErr() {
	// Arrange
	suite.impl.SetOutErr("/tmp/out.log", "/tmp/err log")
	suite.executor.On(
		"Exec",
		mock.Anything,
		mock.MatchedBy(func(req *scheduler.ExecRequest) bool {
			args := pairs(suite.words(req.Cmd)[1:])
			return args["-o"] == "/tmp/out.log" &&
				args["-e"] == "/tmp/err log" &&
				args["-n"] == "16" &&
				args["-W"] == "24:00"
		}),
	).Return([]byte("ok"), nil)
	ctx := context.Background()

	// Act
	_, err := suite.impl.Submit(ctx, []byte("true"))

	// Assert
	suite.NoError(err)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestSetJobName() {
	// Arrange
	suite.impl.SetJobName("my job")

	// Act
	cmd, err := suite.impl.Command()

	// Assert
	suite.NoError(err)
	suite.Contains(cmd, "-J 'my job'")
}

func (suite *ServiceTestSuite) TestDirectMutation() {
	// Arrange
	suite.impl.Options().Set("x", scheduler.Switch())
	suite.impl.Options().Set("R", scheduler.Unset())

	// Act
	effective := suite.impl.EffectiveOptions()
	cmd, err := suite.impl.Command()

	// Assert
	suite.NoError(err)
	suite.True(strings.HasSuffix(cmd, " -x"))
	suite.NotContains(cmd, "-R")
	effective.Set("q", scheduler.Arg("mutated"))
	q, _ := suite.impl.Options().Get("q")
	suite.Equal("short", q.String(), "effective options must be a copy")
}

func (suite *ServiceTestSuite) TestSubmitInteractive() {
	// Arrange
	var tee bytes.Buffer
	suite.executor.On(
		"Exec",
		mock.Anything,
		mock.MatchedBy(func(req *scheduler.ExecRequest) bool {
			args := pairs(suite.words(req.Cmd)[1:])
			_, interactive := args["-I"]
			_, tty := args["-tty"]
			return interactive && tty &&
				args["-q"] == "short" &&
				req.Tee == &tee &&
				string(req.Stdin) == "hostname"
		}),
	).Return([]byte("node01\n"), nil)
	ctx := context.Background()

	// Act
	out, err := suite.impl.SubmitInteractive(ctx, []byte("hostname"), &tee)

	// Assert
	suite.NoError(err)
	suite.Equal([]byte("node01\n"), out)
	_, ok := suite.impl.Options().Get(scheduler.InteractiveKey)
	suite.False(ok, "interactive flags must not persist")
	suite.executor.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestSubmitInteractiveFlagsCannotBeUnset() {
	// Arrange
	suite.executor.On(
		"Exec",
		mock.Anything,
		mock.MatchedBy(func(req *scheduler.ExecRequest) bool {
			args := pairs(suite.words(req.Cmd)[1:])
			_, interactive := args["-I"]
			_, tty := args["-tty"]
			return interactive && tty
		}),
	).Return([]byte("ok"), nil)
	ctx := context.Background()

	// Act
	_, err := suite.impl.SubmitInteractive(ctx, []byte("true"), nil,
		opts(scheduler.InteractiveKey, false, scheduler.TTYKey, false),
	)

	// Assert
	suite.NoError(err)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestSubmitEscapeFailure() {
	// Act
	_, err := suite.impl.Submit(context.Background(), []byte("true"), opts("J", "bad\x00name"))

	// Assert
	var escapeErr *scheduler.EscapeError
	suite.ErrorAs(err, &escapeErr)
	suite.executor.AssertNotCalled(suite.T(), "Exec", mock.Anything, mock.Anything)
}

func (suite *ServiceTestSuite) TestSubmitExitError() {
	// Arrange
	output := []byte("Bad resource requirement syntax. Job not submitted.\n")
	suite.executor.On(
		"Exec",
		mock.Anything,
		mock.Anything,
	).Return(output, &scheduler.ExitError{Code: 255, Output: output})
	ctx := context.Background()

	// Act
	out, err := suite.impl.Submit(ctx, []byte("true"))

	// Assert
	var exitErr *scheduler.ExitError
	suite.ErrorAs(err, &exitErr)
	suite.Equal(255, exitErr.Code)
	suite.Equal(output, out)
	suite.executor.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestSubmitSpawnError() {
	// Arrange
	suite.executor.On(
		"Exec",
		mock.Anything,
		mock.Anything,
	).Return(nil, &scheduler.SpawnError{Binary: "bsub", Err: scheduler.ErrSchedulerNotFound})
	ctx := context.Background()

	// Act
	_, err := suite.impl.Submit(ctx, []byte("true"))

	// Assert
	suite.True(errors.Is(err, scheduler.ErrSchedulerNotFound))
	suite.executor.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestHealthCheck() {
	// Arrange
	suite.executor.On(
		"Exec",
		mock.Anything,
		&scheduler.ExecRequest{Binary: "bsub", Cmd: "bsub -V"},
	).Return([]byte("IBM Spectrum LSF 10.1"), nil)
	ctx := context.Background()

	// Act
	err := suite.impl.HealthCheck(ctx)

	// Assert
	suite.NoError(err)
	suite.executor.AssertExpectations(suite.T())
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, &ServiceTestSuite{})
}

func TestNewLSFOptions(t *testing.T) {
	executor := mocks.NewExecutor(t)
	lsf := scheduler.NewLSF(executor, nil,
		scheduler.WithBinary("/opt/lsf/bin/bsub"),
		scheduler.WithUser("alice"),
		scheduler.WithBinary(""),
	)
	executor.On(
		"Exec",
		mock.Anything,
		mock.MatchedBy(func(req *scheduler.ExecRequest) bool {
			return req.Binary == "/opt/lsf/bin/bsub" &&
				req.User == "alice" &&
				strings.HasPrefix(req.Cmd, "/opt/lsf/bin/bsub -R ")
		}),
	).Return([]byte("ok"), nil)

	_, err := lsf.Submit(context.Background(), []byte("true"))

	require.NoError(t, err)
}
