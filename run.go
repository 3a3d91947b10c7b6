package smx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/gopasspw/gopass/pkg/debug"
)

// Result is the outcome of a finished process.
type Result struct {
	Code    int
	Stdout  string
	Stderr  string
	Success bool
}

// Runner runs an external command.
type Runner interface {
	// Run runs args[0] with the remaining arguments in cwd. A process that
	// ran and failed is reported through Result, not the error.
	Run(ctx context.Context, args []string, cwd string) (Result, error)
}

// ExecRunner runs commands with os/exec. Output is captured, and also
// copied to Stdout and Stderr if they are set. Stdin is passed through for
// interactive programs such as terminal editors.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, args []string, cwd string) (Result, error) {
	if len(args) < 1 {
		return Result{}, fmt.Errorf("no command given")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = cwd
	cmd.Stdin = r.Stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stdout)
	}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}

	debug.V(1).Log("running %q in %q", args, cwd)

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.Success = true
	case errors.As(err, &exitErr):
		res.Code = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("failed to run %s: %w", args[0], err)
	}

	return res, nil
}
