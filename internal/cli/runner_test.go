package cli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/amahpour/arduino-mcp-server-simple/internal/gate"
)

// shRunner returns a Runner whose subprocess is replaced by a shell
// snippet, ignoring the toolchain binary and arguments entirely.
func shRunner(t *testing.T, dir, script string) *Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based runner tests need a POSIX shell")
	}
	r := NewRunner("arduino-cli", dir, gate.New(2), nil)
	r.execCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command("sh", "-c", script)
	}
	return r
}

func TestRunCapturesStdout(t *testing.T) {
	r := shRunner(t, t.TempDir(), `printf 'compile ok'; printf 'noise' >&2`)

	out, err := r.Run(context.Background(), "compile", "--fqbn", "arduino:avr:uno", "blink")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out != "compile ok" {
		t.Errorf("expected stdout only, got=%q", out)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	r := shRunner(t, t.TempDir(), `printf 'missing core\n' >&2; exit 2`)

	_, err := r.Run(context.Background(), "upload", "-p", "/dev/ttyACM0", "--fqbn", "arduino:avr:uno", "blink")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	var terr *ToolError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if terr.ExitCode != 2 {
		t.Errorf("expected exit code 2, got=%d", terr.ExitCode)
	}
	if !strings.Contains(terr.Stderr, "missing core") {
		t.Errorf("expected stderr carried verbatim, got=%q", terr.Stderr)
	}
	if len(terr.Args) == 0 || terr.Args[0] != "upload" {
		t.Errorf("expected original args preserved, got=%v", terr.Args)
	}
	// The message must embed both the argument list and stderr.
	msg := terr.Error()
	if !strings.Contains(msg, "upload -p /dev/ttyACM0") || !strings.Contains(msg, "missing core") {
		t.Errorf("error message lacks diagnostics: %q", msg)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := NewRunner("definitely-not-installed-tool", t.TempDir(), nil, nil)

	_, err := r.Run(context.Background(), "version")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	var terr *ToolError
	if errors.As(err, &terr) {
		t.Error("spawn failure should not be a ToolError")
	}
}

func TestRunUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := shRunner(t, dir, `ls`)
	out, err := r.Run(context.Background(), "board", "list")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out, "marker.txt") {
		t.Errorf("expected subprocess to run in %s, output=%q", dir, out)
	}
}

func TestRunCancelledBeforeAdmission(t *testing.T) {
	r := shRunner(t, t.TempDir(), `printf 'hi'`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, "version"); err == nil {
		t.Fatal("expected context error before admission")
	}
}
