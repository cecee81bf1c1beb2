package serialio

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/amahpour/arduino-mcp-server-simple/internal/gate"
)

// DefaultReadTimeout is the read deadline used when the caller does not
// supply one.
const DefaultReadTimeout = 2 * time.Second

// writeOnlyTimeout bounds the open for transactions that never read.
const writeOnlyTimeout = time.Second

// OpenFunc opens a serial port. The production value is serial.Open.
type OpenFunc func(name string, mode *serial.Mode) (serial.Port, error)

// Transactor performs one write-then-optionally-read exchange per call.
// The connection is opened and closed inside the call; no state survives
// between transactions.
type Transactor struct {
	gt   *gate.Gate
	open OpenFunc
}

// NewTransactor returns a Transactor whose blocking I/O is admitted
// through gt. A nil gate means unbounded.
func NewTransactor(gt *gate.Gate) *Transactor {
	return &Transactor{gt: gt, open: serial.Open}
}

// Send writes message (newline-terminated) and returns the first line
// read within timeout, or "" if nothing arrives.
func (t *Transactor) Send(ctx context.Context, port string, baud int, message string, timeout time.Duration) (string, error) {
	return t.transact(ctx, port, baud, &message, true, timeout)
}

// Write sends message (newline-terminated) without reading a response
// and returns a confirmation string.
func (t *Transactor) Write(ctx context.Context, port string, baud int, message string) (string, error) {
	if _, err := t.transact(ctx, port, baud, &message, false, writeOnlyTimeout); err != nil {
		return "", err
	}
	return fmt.Sprintf("Message sent successfully to %s", port), nil
}

// Read returns the first line received within timeout, or "" if nothing
// arrives before the deadline.
func (t *Transactor) Read(ctx context.Context, port string, baud int, timeout time.Duration) (string, error) {
	return t.transact(ctx, port, baud, nil, true, timeout)
}

func (t *Transactor) transact(ctx context.Context, port string, baud int, out *string, read bool, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	var line string
	op := func() error {
		mode := &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}

		p, err := t.open(port, mode)
		if err != nil {
			return fmt.Errorf("open %s: %w", port, err)
		}
		defer p.Close()

		if out != nil {
			if _, err := p.Write([]byte(*out + "\n")); err != nil {
				return fmt.Errorf("write %s: %w", port, err)
			}
			if err := p.Drain(); err != nil {
				return fmt.Errorf("flush %s: %w", port, err)
			}
		}

		if read {
			line, err = readLine(p, timeout)
			if err != nil {
				return fmt.Errorf("read %s: %w", port, err)
			}
		}
		return nil
	}

	var err error
	if t.gt != nil {
		err = t.gt.Do(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return "", err
	}
	return line, nil
}

// readLine accumulates bytes until a newline or the deadline, whichever
// comes first. Expiry with no data is not an error; it yields "".
func readLine(p serial.Port, deadline time.Duration) (string, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 256)
	start := time.Now()

	for {
		remaining := deadline - time.Since(start)
		if remaining <= 0 {
			break
		}
		if err := p.SetReadTimeout(remaining); err != nil {
			return "", err
		}

		n, err := p.Read(chunk)
		if err != nil {
			return "", err
		}
		if n == 0 {
			// Deadline expired with the port silent.
			break
		}

		if i := bytes.IndexByte(chunk[:n], '\n'); i >= 0 {
			buf.Write(chunk[:i+1])
			break
		}
		buf.Write(chunk[:n])
	}

	return decodeLine(buf.Bytes()), nil
}

// decodeLine interprets raw serial bytes as text, substituting the
// Unicode replacement character for undecodable sequences, and strips
// surrounding whitespace including the line terminator.
func decodeLine(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), "�"))
}
