// Package runner executes external tools on behalf of the harness.
//
// Every tool the harness drives (copier, git, python, pre-commit,
// check-manifest) goes through a CommandRunner so scenarios can be tested
// against a fake. Calls block until the process exits; there is no timeout
// and no retry.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
	"github.com/rs/zerolog"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunOpts holds optional parameters for command execution.
type RunOpts struct {
	Dir    string            // working directory; empty inherits the process cwd
	Env    map[string]string // extra environment variables (overlay)
	Stream bool              // also copy output to the runner's console writers
}

// CommandRunner is the interface for running external commands.
type CommandRunner interface {
	// Run executes a command and waits for it to exit. A non-zero exit is
	// returned as a COMMAND_FAILED error alongside the captured Result.
	Run(ctx context.Context, name string, args []string, opts RunOpts) (Result, error)
}

// RealRunner runs commands with os/exec.
type RealRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	logger zerolog.Logger
}

// NewRealRunner creates a RealRunner streaming to the process stdout/stderr.
func NewRealRunner() *RealRunner {
	return &RealRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logging.GetLogger("runner"),
	}
}

// Run executes the command and captures stdout/stderr.
func (r *RealRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (Result, error) {
	logging.LogCommand(r.logger, name, args, opts.Dir)

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if opts.Stream {
		if r.Stdout != nil {
			cmd.Stdout = io.MultiWriter(&stdout, r.Stdout)
		}
		if r.Stderr != nil {
			cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
		}
	}

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		r.logger.Trace().Str("command", name).Str("stdout", result.Stdout).Msg("Command succeeded")
		return result, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logger.Error().
			Str("command", name).
			Strs("args", args).
			Int("exitCode", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("Command failed")
		return result, Failure(name, args, result, err)
	}

	result.ExitCode = -1
	if stderrors.Is(err, exec.ErrNotFound) {
		return result, errors.Wrapf(err, errors.ErrCommandNotFound, "command not found: %s", name).
			WithDetail("command", name)
	}
	return result, errors.Wrapf(err, errors.ErrCommandFailed, "failed to start %s", name).
		WithDetail("command", name).
		WithDetail("args", args)
}

// Failure builds the COMMAND_FAILED error for a process that exited
// non-zero. Fakes use it to report failures the same way RealRunner does.
func Failure(name string, args []string, result Result, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("exit status %d", result.ExitCode)
	}
	return errors.Wrapf(cause, errors.ErrCommandFailed, "%s exited with status %d", CommandLine(name, args), result.ExitCode).
		WithDetail("command", name).
		WithDetail("args", args).
		WithDetail("exitCode", result.ExitCode).
		WithDetail("stderr", strings.TrimSpace(result.Stderr))
}

// CommandLine renders name and args for messages.
func CommandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// ExitCode extracts the exit status recorded on a COMMAND_FAILED error
// anywhere in err's chain. It returns -1 when err carries none.
func ExitCode(err error) int {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		scaffoldErr, ok := e.(*errors.ScaffoldError)
		if !ok || scaffoldErr.Code != errors.ErrCommandFailed {
			continue
		}
		if code, ok := scaffoldErr.Details["exitCode"].(int); ok {
			return code
		}
	}
	return -1
}
