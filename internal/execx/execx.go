// Package execx invokes external tools with a fixed argument vector.
// Commands are never routed through a shell, so no argument is ever
// interpolated into a command string.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/vsavkov/mcpsetup/internal/termlog"
)

// Result captures one external invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined for debug echo.
func (r Result) Combined() string {
	out := strings.TrimSpace(r.Stdout)
	errOut := strings.TrimSpace(r.Stderr)
	switch {
	case out == "":
		return errOut
	case errOut == "":
		return out
	default:
		return out + "\n" + errOut
	}
}

// Runner executes external commands. The concrete implementation shells
// out; tests substitute a stub.
type Runner interface {
	// Run executes name with args and returns the captured result. A
	// non-zero exit is not an error; err is reserved for failures to
	// start the process at all (not found, permission).
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// RunStdin is Run with bytes fed to the child's stdin.
	RunStdin(ctx context.Context, stdin []byte, name string, args ...string) (Result, error)

	// LookPath reports whether name resolves on PATH.
	LookPath(name string) (string, bool)
}

type runner struct {
	log *termlog.Logger
}

// New returns the process-backed Runner. log may be nil.
func New(log *termlog.Logger) Runner {
	return &runner{log: log}
}

func (r *runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return r.RunStdin(ctx, nil, name, args...)
}

func (r *runner) RunStdin(ctx context.Context, stdin []byte, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	} else {
		cmd.Stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		err = nil
	default:
		res.ExitCode = -1
	}
	if r.log != nil {
		r.log.Command(name, args, res.Combined(), res.ExitCode)
	}
	return res, err
}

func (r *runner) LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
