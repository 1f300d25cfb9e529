// pkg/runner/runner_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: /bin/sh
// PURPOSE: Verify RealRunner captures output and maps exit statuses to errors

package runner_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_Success(t *testing.T) {
	r := runner.NewRealRunner()
	result, err := r.Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"}, runner.RunOpts{})

	require.NoError(t, err)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRealRunner_ExitCode(t *testing.T) {
	r := runner.NewRealRunner()
	result, err := r.Run(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 3"}, runner.RunOpts{})

	require.Error(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.Equal(t, 3, runner.ExitCode(err))
	assert.Equal(t, "broken", errors.GetErrorDetails(err)["stderr"])
}

func TestRealRunner_NotFound(t *testing.T) {
	r := runner.NewRealRunner()
	result, err := r.Run(context.Background(), "scaffoldcheck-no-such-binary", nil, runner.RunOpts{})

	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandNotFound))
	assert.Equal(t, -1, result.ExitCode)
	assert.Equal(t, -1, runner.ExitCode(err))
}

func TestRealRunner_DirAndEnv(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	r := runner.NewRealRunner()
	result, err := r.Run(context.Background(), "sh", []string{"-c", "pwd -P; echo $SCAFFOLDCHECK_PROBE"}, runner.RunOpts{
		Dir: dir,
		Env: map[string]string{"SCAFFOLDCHECK_PROBE": "42"},
	})

	require.NoError(t, err)
	assert.Equal(t, dir+"\n42\n", result.Stdout)
}

func TestRealRunner_Stream(t *testing.T) {
	var console bytes.Buffer
	r := runner.NewRealRunner()
	r.Stdout = &console

	result, err := r.Run(context.Background(), "sh", []string{"-c", "echo hi"}, runner.RunOpts{Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", result.Stdout)
	assert.Equal(t, "hi\n", console.String())

	console.Reset()
	_, err = r.Run(context.Background(), "sh", []string{"-c", "echo quiet"}, runner.RunOpts{})
	require.NoError(t, err)
	assert.Empty(t, console.String())
}

func TestFailure(t *testing.T) {
	err := runner.Failure("git", []string{"commit", "-m", "x"}, runner.Result{ExitCode: 128, Stderr: " nothing to commit \n"}, nil)

	assert.Contains(t, err.Error(), "git commit -m x exited with status 128")
	assert.Equal(t, "nothing to commit", errors.GetErrorDetails(err)["stderr"])

	wrapped := errors.Wrap(err, errors.ErrMaterialize, "render failed")
	assert.Equal(t, 128, runner.ExitCode(wrapped))
	assert.Equal(t, -1, runner.ExitCode(fmt.Errorf("plain")))
	assert.Equal(t, -1, runner.ExitCode(nil))
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "copier", runner.CommandLine("copier", nil))
	assert.Equal(t, "copier copy --force", runner.CommandLine("copier", []string{"copy", "--force"}))
}
