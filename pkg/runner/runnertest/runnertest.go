// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"strings"
	"sync"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/runner"
)

// Call records a single Run invocation.
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// CommandLine returns the call as "name arg1 arg2 ...".
func (c Call) CommandLine() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type response struct {
	output string
	err    error
}

// Fake is a runner.Runner that answers from a script and records calls.
// Commands are matched on their full command line; Handler, when set, is
// consulted for anything the script does not cover. Unmatched commands fail
// with an ExecError.
type Fake struct {
	Handler func(Call) (string, error)

	mu        sync.Mutex
	calls     []Call
	responses map[string]response
}

var _ runner.Runner = (*Fake)(nil)

// New creates an empty Fake.
func New() *Fake {
	return &Fake{responses: make(map[string]response)}
}

// On scripts the result for an exact command line.
func (f *Fake) On(commandLine, output string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine] = response{output: output, err: err}
	return f
}

// Fail scripts a non-zero exit for an exact command line.
func (f *Fake) Fail(commandLine, stderr string) *Fake {
	name, _, _ := strings.Cut(commandLine, " ")
	return f.On(commandLine, "", floyderrors.NewExecutionFailed(name, stderr, 1, nil))
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, name string, args []string, stdin string) (string, error) {
	call := Call{Name: name, Args: append([]string(nil), args...), Stdin: stdin}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	resp, ok := f.responses[call.CommandLine()]
	handler := f.Handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ok {
		return resp.output, resp.err
	}
	if handler != nil {
		return handler(call)
	}
	return "", floyderrors.NewExecutionFailed(name, "unexpected command: "+call.CommandLine(), 1, nil)
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls to the named tool.
func (f *Fake) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
