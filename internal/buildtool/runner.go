package buildtool

import (
	"context"
	"os/exec"
)

// Runner executes an external command in a working directory and returns
// its combined output. The indirection keeps builds testable without a
// Rust toolchain on the test machine.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// execRunner runs commands through os/exec. The working directory is set
// on the command itself; the process-wide working directory is never
// touched.
type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
