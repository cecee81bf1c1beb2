// Package tools implements the MCP tool surface: each operation is a thin
// composition of validation, board resolution, and delegation to the
// toolchain runner or serial transactor.
package tools

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/amahpour/arduino-mcp-server-simple/internal/serialio"
	"github.com/amahpour/arduino-mcp-server-simple/internal/store"
	"github.com/amahpour/arduino-mcp-server-simple/internal/validate"
)

// Resolver maps a port address to an FQBN.
type Resolver interface {
	Resolve(ctx context.Context, port string) (string, error)
}

// Runner executes an arduino-cli subcommand and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// Transactor performs one-shot serial exchanges.
type Transactor interface {
	Send(ctx context.Context, port string, baud int, message string, timeout time.Duration) (string, error)
	Write(ctx context.Context, port string, baud int, message string) (string, error)
	Read(ctx context.Context, port string, baud int, timeout time.Duration) (string, error)
}

// Recorder persists operation history. A nil Recorder disables history.
type Recorder interface {
	AddCompile(store.CompileRecord) error
	AddUpload(store.UploadRecord) error
}

// Service wires the tool operations to their collaborators. Every
// operation is stateless; the only shared mutable state is the port→FQBN
// cache behind the Resolver.
type Service struct {
	resolver Resolver
	runner   Runner
	tx       Transactor
	rec      Recorder
	log      *slog.Logger

	// DefaultTimeout is the serial read deadline used when a tool call
	// does not supply one.
	DefaultTimeout time.Duration

	listPorts func() ([]serialio.PortInfo, error)
	statPath  func(string) error
}

// NewService returns a Service. rec may be nil.
func NewService(resolver Resolver, runner Runner, tx Transactor, rec Recorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		resolver:       resolver,
		runner:         runner,
		tx:             tx,
		rec:            rec,
		log:            log,
		DefaultTimeout: serialio.DefaultReadTimeout,
		listPorts:      serialio.ListPorts,
		statPath: func(p string) error {
			_, err := os.Stat(p)
			return err
		},
	}
}

// Ping confirms liveness.
func (s *Service) Ping() string {
	return "pong"
}

// ListPorts enumerates serial ports from the OS.
func (s *Service) ListPorts() ([]serialio.PortInfo, error) {
	return s.listPorts()
}

// Compile compiles a sketch. fqbn and port are optional, but at least one
// must be supplied; a missing fqbn is resolved from the port via the
// board registry.
func (s *Service) Compile(ctx context.Context, sketch string, fqbn, port *string) (string, error) {
	if fqbn == nil && port == nil {
		return "", &MissingParameterError{Op: "compile"}
	}
	if err := s.checkSketch(sketch); err != nil {
		return "", err
	}

	id, err := s.boardID(ctx, fqbn, port)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := s.runner.Run(ctx, "compile", "--fqbn", id, sketch)
	s.record(func() error {
		return s.rec.AddCompile(store.CompileRecord{
			Sketch:    sketch,
			FQBN:      id,
			Timestamp: start,
			Success:   err == nil,
			Duration:  time.Since(start).Round(time.Millisecond).String(),
		})
	})
	return out, err
}

// Upload flashes a sketch to the board on port. A missing fqbn is
// resolved from the port.
func (s *Service) Upload(ctx context.Context, sketch, port string, fqbn *string) (string, error) {
	if err := validate.CheckPort(port); err != nil {
		return "", err
	}
	if err := s.checkSketch(sketch); err != nil {
		return "", err
	}

	id, err := s.boardID(ctx, fqbn, &port)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := s.runner.Run(ctx, "upload", "-p", port, "--fqbn", id, sketch)
	s.record(func() error {
		return s.rec.AddUpload(store.UploadRecord{
			Sketch:    sketch,
			FQBN:      id,
			Port:      port,
			Timestamp: start,
			Success:   err == nil,
			Duration:  time.Since(start).Round(time.Millisecond).String(),
		})
	})
	return out, err
}

// SerialSend writes a line and returns the first response line, or ""
// if nothing arrives within timeout.
func (s *Service) SerialSend(ctx context.Context, port string, baud int, message string, timeout time.Duration) (string, error) {
	if err := validate.CheckPort(port); err != nil {
		return "", err
	}
	if timeout <= 0 {
		timeout = s.DefaultTimeout
	}
	return s.tx.Send(ctx, port, baud, message, timeout)
}

// SerialWrite writes a line without reading and returns a confirmation.
func (s *Service) SerialWrite(ctx context.Context, port string, baud int, message string) (string, error) {
	if err := validate.CheckPort(port); err != nil {
		return "", err
	}
	return s.tx.Write(ctx, port, baud, message)
}

// SerialRead returns the first line received within timeout, or "".
func (s *Service) SerialRead(ctx context.Context, port string, baud int, timeout time.Duration) (string, error) {
	if err := validate.CheckPort(port); err != nil {
		return "", err
	}
	if timeout <= 0 {
		timeout = s.DefaultTimeout
	}
	return s.tx.Read(ctx, port, baud, timeout)
}

// boardID yields a validated FQBN from an explicit value or by resolving
// the port.
func (s *Service) boardID(ctx context.Context, fqbn, port *string) (string, error) {
	if fqbn != nil {
		if err := validate.CheckFQBN(*fqbn); err != nil {
			return "", err
		}
		return *fqbn, nil
	}

	if err := validate.CheckPort(*port); err != nil {
		return "", err
	}
	id, err := s.resolver.Resolve(ctx, *port)
	if err != nil {
		return "", err
	}
	if err := validate.CheckFQBN(id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) checkSketch(sketch string) error {
	if err := s.statPath(sketch); err != nil {
		return &NotFoundError{Path: sketch}
	}
	return nil
}

// record runs fn when history is enabled; a failed append is logged and
// otherwise ignored.
func (s *Service) record(fn func() error) {
	if s.rec == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn("could not append history record", "err", err)
	}
}
