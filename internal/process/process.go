package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/google/shlex"
)

// gracefulTimeout is how long a cancelled command gets to exit after SIGINT
// before it is killed.
const gracefulTimeout = 2 * time.Second

// ErrEmptyCommand is returned for a command string with no arguments.
var ErrEmptyCommand = errors.New("empty command")

// Result is the outcome of a finished command.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ExitError reports a command that ran but did not exit cleanly.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%q exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%q exited with code %d", e.Command, e.ExitCode)
}

// Runner executes commands. Run satisfies it as a function value.
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, command string) (Result, error)

// Run calls f(ctx, command).
func (f RunnerFunc) Run(ctx context.Context, command string) (Result, error) {
	return f(ctx, command)
}

// Default runs commands on the host.
var Default Runner = RunnerFunc(Run)

// Run parses and executes command, waiting for it to finish. A non-zero exit
// status is returned as *ExitError alongside the populated Result.
func Run(ctx context.Context, command string) (Result, error) {
	res := Result{Command: command}

	args, err := parseCommand(command)
	if err != nil {
		res.ExitCode = 1
		return res, err
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.ExitCode = 127
		return res, fmt.Errorf("failed to start %q: %w", command, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		waitErr = stopGroup(cmd, done)
		res.Duration = time.Since(start)
		res.ExitCode = exitCodeFromError(waitErr)
		res.Stdout, res.Stderr = stdout.String(), strings.TrimSpace(stderr.String())
		return res, fmt.Errorf("%q interrupted: %w", command, ctx.Err())
	}

	res.Duration = time.Since(start)
	res.ExitCode = exitCodeFromError(waitErr)
	res.Stdout, res.Stderr = stdout.String(), strings.TrimSpace(stderr.String())

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("%q: %w", command, waitErr)
		}
		return res, &ExitError{Command: command, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, nil
}

// stopGroup sends SIGINT to the command's process group and escalates to
// SIGKILL if it has not exited within gracefulTimeout.
func stopGroup(cmd *exec.Cmd, done <-chan error) error {
	pgid := -cmd.Process.Pid
	_ = syscall.Kill(pgid, syscall.SIGINT)

	select {
	case err := <-done:
		return err
	case <-time.After(gracefulTimeout):
	}

	if err := syscall.Kill(pgid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
	return <-done
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		// killed by signal
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
	}
	return 1
}

// parseCommand splits a command string into arguments using shell quoting
// rules.
func parseCommand(command string) ([]string, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	return args, nil
}
