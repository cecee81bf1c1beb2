// Package tui implements the interactive serial monitor mode. It is a
// human-facing complement to the MCP tool surface: the MCP transport owns
// stdin/stdout, so the monitor runs as a separate invocation of the same
// binary.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amahpour/arduino-mcp-server-simple/internal/serialio"
)

// dataMsg carries one decoded chunk from the serial port.
type dataMsg string

// disconnectedMsg is sent when the monitor's data channel closes.
type disconnectedMsg struct{}

// MonitorModel is the bubbletea model for the serial monitor.
type MonitorModel struct {
	monitor *serialio.Monitor
	port    string
	baud    int

	viewport viewport.Model
	input    textinput.Model
	content  string
	ready    bool
	err      error
}

// NewMonitorModel returns a model streaming from an already-connected
// monitor.
func NewMonitorModel(monitor *serialio.Monitor, port string, baud int) MonitorModel {
	input := textinput.New()
	input.Placeholder = "type a line and press enter to send"
	input.Focus()

	return MonitorModel{
		monitor: monitor,
		port:    port,
		baud:    baud,
		input:   input,
	}
}

func waitForData(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		data, ok := <-ch
		if !ok {
			return disconnectedMsg{}
		}
		return dataMsg(data)
	}
}

func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForData(m.monitor.Data()))
}

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - 6 // title, input, help, borders
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.content)
		return m, nil

	case dataMsg:
		m.content += string(msg)
		if m.ready {
			m.viewport.SetContent(m.content)
			m.viewport.GotoBottom()
		}
		return m, waitForData(m.monitor.Data())

	case disconnectedMsg:
		m.err = fmt.Errorf("serial connection closed")
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.monitor.Disconnect()
			return m, tea.Quit
		case "enter":
			line := m.input.Value()
			if line != "" {
				if err := m.monitor.Send(line); err != nil {
					m.err = err
				}
				m.input.Reset()
			}
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m MonitorModel) View() string {
	title := titleStyle.Render("Serial Monitor")
	status := statusStyle.Render(fmt.Sprintf("%s @ %d baud", m.port, m.baud))
	if m.monitor.Connected() {
		status += " " + connectedStyle.Render("connected")
	}

	var body string
	if m.ready {
		body = outputStyle.Render(m.viewport.View())
	} else {
		body = statusStyle.Render("waiting for terminal size...")
	}

	view := title + "  " + status + "\n" + body + "\n" + m.input.View() + "\n" +
		statusStyle.Render("enter: send • esc: quit")

	if m.err != nil {
		view += "\n" + errorStyle.Render(m.err.Error())
	}
	return view
}
