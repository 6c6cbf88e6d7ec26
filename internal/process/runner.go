// Package process runs external tools and captures their output.
//
// The Runner interface is the only way the decompile path touches the OS
// process table, so classification logic can be tested against a fake.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultWaitDelay bounds how long Wait keeps draining pipes after the
// process has been killed. Shell-launched tools can leave grandchildren
// holding stdout open.
const DefaultWaitDelay = 2 * time.Second

// Command describes one invocation.
type Command struct {
	// Executable is the tool to run.
	Executable string
	// Args are quoted individually with host quoting rules.
	Args []string
	// ExtraArgs is a free-form option string appended verbatim after Args.
	ExtraArgs string
	// Dir is the working directory; empty inherits the caller's.
	Dir string
}

// Result holds everything the process produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner spawns a command and waits for it to exit.
//
// Run returns a *StartError when the tool could not be executed and the
// context error when the context ended first. A resolvable tool that exits
// with a shell start-failure status is reported as a plain exit. Any other exit status is
// reported in Result.ExitCode with a nil error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands through the platform shell so ExtraArgs keeps the
// shell semantics users expect from an options string.
type ExecRunner struct {
	// WaitDelay overrides DefaultWaitDelay when positive.
	WaitDelay time.Duration
	// Env replaces the inherited environment when non-nil.
	Env []string
}

// NewExecRunner returns an ExecRunner with default settings.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// CommandLine renders cmd as a single shell command line.
func CommandLine(cmd Command) string {
	parts := make([]string, 0, len(cmd.Args)+2)
	parts = append(parts, Quote(cmd.Executable))
	for _, a := range cmd.Args {
		parts = append(parts, Quote(a))
	}
	if extra := strings.TrimSpace(cmd.ExtraArgs); extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, " ")
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Executable == "" {
		return Result{}, fmt.Errorf("no executable given")
	}

	c := shellCommand(ctx, CommandLine(cmd))
	c.Dir = cmd.Dir
	if r.Env != nil {
		c.Env = r.Env
	} else {
		c.Env = os.Environ()
	}
	c.WaitDelay = DefaultWaitDelay
	if r.WaitDelay > 0 {
		c.WaitDelay = r.WaitDelay
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, &StartError{Executable: cmd.Executable, Err: err}
	}

	// The shell reports a tool it could not exec with the same statuses a
	// launcher script may return itself; only a tool that cannot be
	// resolved counts as never started.
	if isStartFailure(res.ExitCode) && !launchable(cmd.Executable) {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", res.ExitCode)
		}
		return res, &StartError{Executable: cmd.Executable, Err: errors.New(msg)}
	}
	return res, nil
}

// launchable reports whether the shell would find exe and be allowed to
// exec it.
func launchable(exe string) bool {
	_, err := exec.LookPath(exe)
	return err == nil || errors.Is(err, exec.ErrDot)
}

// StartError reports a command that never ran: the shell or the OS could not
// execute it.
type StartError struct {
	Executable string
	Err        error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Executable, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }
