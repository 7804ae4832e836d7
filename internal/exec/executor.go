package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

type executor struct{}

// New returns an Executor backed by os/exec.
func New() Executor {
	return &executor{}
}

func (e *executor) Run(ctx context.Context, opts *RunOptions) (*Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...) //nolint:gosec // callers pass fixed command names

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	cmd.Stderr = &stderr
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); err != nil && errors.Is(ctxErr, context.DeadlineExceeded) {
		err = ctxErr
	}

	result := &Result{ExitCode: cmd.ProcessState.ExitCode()}
	if opts.Stdout == nil {
		result.Stdout = stdout.Bytes()
	}
	if opts.Stderr == nil {
		result.Stderr = stderr.Bytes()
	}

	return result, err
}

func (e *executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
