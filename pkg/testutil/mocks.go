package testutil

import (
	"context"
	"os"
	"sync"

	"github.com/arthur-debert/scaffoldcheck/pkg/runner"
	"github.com/stretchr/testify/mock"
)

// MockRunner is a testify mock of runner.CommandRunner.
type MockRunner struct {
	mock.Mock
}

// Run records the call and returns the configured result.
func (m *MockRunner) Run(ctx context.Context, name string, args []string, opts runner.RunOpts) (runner.Result, error) {
	ret := m.Called(ctx, name, args, opts)
	var result runner.Result
	if r, ok := ret.Get(0).(runner.Result); ok {
		result = r
	}
	return result, ret.Error(1)
}

// Call is one invocation seen by a RecordingRunner.
type Call struct {
	Name string
	Args []string
	Opts runner.RunOpts
	Cwd  string // process working directory when the call was made
}

// Handler produces the outcome of a recorded call.
type Handler func(call Call) (runner.Result, error)

// RecordingRunner records every call and dispatches on the command name.
// Commands without a handler succeed with an empty Result.
type RecordingRunner struct {
	mu       sync.Mutex
	Handlers map[string]Handler
	Calls    []Call
}

// NewRecordingRunner creates an empty RecordingRunner.
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{Handlers: make(map[string]Handler)}
}

// Handle registers h for command name.
func (r *RecordingRunner) Handle(name string, h Handler) *RecordingRunner {
	r.Handlers[name] = h
	return r
}

// Run implements runner.CommandRunner.
func (r *RecordingRunner) Run(ctx context.Context, name string, args []string, opts runner.RunOpts) (runner.Result, error) {
	cwd, _ := os.Getwd()
	call := Call{Name: name, Args: append([]string(nil), args...), Opts: opts, Cwd: cwd}

	r.mu.Lock()
	r.Calls = append(r.Calls, call)
	h := r.Handlers[name]
	r.mu.Unlock()

	if h == nil {
		return runner.Result{}, nil
	}
	return h(call)
}

// CallsTo returns the recorded calls for command name, in order.
func (r *RecordingRunner) CallsTo(name string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Fail returns a handler that exits with code and stderr.
func Fail(code int, stderr string) Handler {
	return func(call Call) (runner.Result, error) {
		result := runner.Result{ExitCode: code, Stderr: stderr}
		return result, runner.Failure(call.Name, call.Args, result, nil)
	}
}
