package serialio

import (
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// Monitor holds a serial connection open and streams incoming data on a
// channel, for the interactive monitor mode. It is the one place in this
// program where a connection outlives a single call.
type Monitor struct {
	mu      sync.Mutex
	port    serial.Port
	running bool
	dataCh  chan string
	done    chan struct{}

	open OpenFunc
}

// NewMonitor returns a disconnected Monitor.
func NewMonitor() *Monitor {
	return &Monitor{open: serial.Open}
}

// Connect opens the port at the given baud rate and starts the read loop.
// An existing connection is closed first.
func (m *Monitor) Connect(portName string, baudRate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.disconnectLocked()
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := m.open(portName, mode)
	if err != nil {
		return err
	}

	m.port = port
	m.running = true
	m.dataCh = make(chan string, 64)
	m.done = make(chan struct{})

	go m.readLoop(port, m.dataCh, m.done)
	return nil
}

// Disconnect closes the connection, if any.
func (m *Monitor) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectLocked()
}

func (m *Monitor) disconnectLocked() {
	if !m.running {
		return
	}
	m.running = false
	if m.port != nil {
		m.port.Close()
	}
	close(m.done)
}

// Send writes a newline-terminated line to the port.
func (m *Monitor) Send(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.port == nil {
		return io.ErrClosedPipe
	}
	if _, err := m.port.Write([]byte(line + "\n")); err != nil {
		return err
	}
	return m.port.Drain()
}

// Data returns the channel carrying decoded chunks from the current
// connection. The channel is closed when the read loop stops, whether by
// Disconnect or by a port error.
func (m *Monitor) Data() <-chan string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dataCh
}

// Connected reports whether the monitor currently holds an open port.
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) readLoop(port serial.Port, ch chan string, done chan struct{}) {
	defer close(ch)

	buf := make([]byte, 1024)
	for {
		select {
		case <-done:
			return
		default:
		}

		n, err := port.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			select {
			case ch <- strings.ToValidUTF8(string(buf[:n]), "�"):
			default:
				// Drop when the consumer falls behind.
			}
		}
	}
}
