package process

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestRunSuccess(t *testing.T) {
	res, err := Run(t.Context(), `sh -c "echo hello; echo oops >&2"`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
	if res.Stderr != "oops" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "oops")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := Run(t.Context(), `sh -c "echo denied >&2; exit 3"`)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() error = %v, want *ExitError", err)
	}
	if exitErr.ExitCode != 3 || res.ExitCode != 3 {
		t.Errorf("exit code = %d/%d, want 3", exitErr.ExitCode, res.ExitCode)
	}
	if exitErr.Stderr != "denied" {
		t.Errorf("Stderr = %q, want %q", exitErr.Stderr, "denied")
	}
}

func TestRunMissingBinary(t *testing.T) {
	res, err := Run(t.Context(), "definitely-not-a-real-binary-xyz --flag")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if res.ExitCode != 127 {
		t.Errorf("ExitCode = %d, want 127", res.ExitCode)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	if _, err := Run(t.Context(), "   "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("Run() error = %v, want ErrEmptyCommand", err)
	}
}

func TestRunContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, "sleep 10")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Run() took %v after cancellation", elapsed)
	}
}

func TestRunnerFunc(t *testing.T) {
	var got string
	r := RunnerFunc(func(_ context.Context, command string) (Result, error) {
		got = command
		return Result{Command: command}, nil
	})
	if _, err := r.Run(t.Context(), "true"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got != "true" {
		t.Errorf("command = %q, want %q", got, "true")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		expected []string
		wantErr  bool
	}{
		{
			name:     "simple command",
			command:  "tc qdisc del dev s1-eth1 root",
			expected: []string{"tc", "qdisc", "del", "dev", "s1-eth1", "root"},
		},
		{
			name:     "double quotes",
			command:  `sh -c "echo hello world"`,
			expected: []string{"sh", "-c", "echo hello world"},
		},
		{
			name:     "single quotes",
			command:  `echo 'a b' c`,
			expected: []string{"echo", "a b", "c"},
		},
		{
			name:     "extra whitespace",
			command:  "  sudo   ovs-ofctl  ",
			expected: []string{"sudo", "ovs-ofctl"},
		},
		{
			name:    "unclosed quote",
			command: `echo "oops`,
			wantErr: true,
		},
		{
			name:    "empty",
			command: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := parseCommand(tt.command)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", args)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(args, tt.expected) {
				t.Errorf("parseCommand(%q) = %q, want %q", tt.command, args, tt.expected)
			}
		})
	}
}
