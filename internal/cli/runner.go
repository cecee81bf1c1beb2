// Package cli invokes the arduino-cli toolchain as a subprocess and
// surfaces its diagnostics to the caller.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/amahpour/arduino-mcp-server-simple/internal/gate"
)

// DefaultBin is the toolchain executable resolved from PATH.
const DefaultBin = "arduino-cli"

// ToolError reports a toolchain invocation that exited non-zero. Stderr is
// carried verbatim so the caller sees arduino-cli's own diagnostics.
type ToolError struct {
	Args     []string
	Stderr   string
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("arduino-cli %s failed:\n%s", strings.Join(e.Args, " "), e.Stderr)
}

// Runner executes arduino-cli subcommands with a fixed working directory.
// Each Run is exactly one subprocess lifecycle: no retries, no caller
// timeout; the process runs to completion and both pipes are drained
// before Run returns.
type Runner struct {
	bin string
	dir string
	gt  *gate.Gate
	log *slog.Logger

	// execCommand is swapped in tests.
	execCommand func(name string, args ...string) *exec.Cmd
}

// NewRunner returns a Runner invoking bin with workDir as the working
// directory for every subcommand.
func NewRunner(bin, workDir string, gt *gate.Gate, log *slog.Logger) *Runner {
	if bin == "" {
		bin = DefaultBin
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		bin:         bin,
		dir:         workDir,
		gt:          gt,
		log:         log,
		execCommand: exec.Command,
	}
}

// Run executes the toolchain with args and returns its stdout. The context
// bounds only admission through the gate; once started, the subprocess
// runs to completion.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	run := func() error {
		cmd := r.execCommand(r.bin, args...)
		cmd.Dir = r.dir
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		start := time.Now()
		err := cmd.Run()
		r.log.Debug("toolchain run",
			"args", strings.Join(args, " "),
			"duration", time.Since(start),
			"err", err)

		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return &ToolError{
					Args:     append([]string(nil), args...),
					Stderr:   stderr.String(),
					ExitCode: exitErr.ExitCode(),
				}
			}
			return fmt.Errorf("%s: %w", r.bin, err)
		}
		return nil
	}

	var err error
	if r.gt != nil {
		err = r.gt.Do(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return "", err
	}
	return stdout.String(), nil
}
