package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer builds the MCP server with every tool registered against svc.
func NewServer(svc *Service, version string) *server.MCPServer {
	srv := server.NewMCPServer("ArduinoMCP", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv.AddTool(mcp.NewTool("list_ports",
		mcp.WithDescription("List all available USB/serial ports on the system. Returns device, description and hwid for each port."),
	), svc.handleListPorts)

	srv.AddTool(mcp.NewTool("ping",
		mcp.WithDescription("Health check; always returns \"pong\"."),
	), svc.handlePing)

	srv.AddTool(mcp.NewTool("compile",
		mcp.WithDescription("Compile an Arduino sketch with arduino-cli. If fqbn is omitted it is auto-detected from the board attached to port."),
		mcp.WithString("sketch",
			mcp.Required(),
			mcp.Description("Path to the sketch directory, e.g. 'sketches/echo_serial'."),
		),
		mcp.WithString("fqbn",
			mcp.Description("Fully Qualified Board Name, e.g. 'arduino:avr:uno'."),
		),
		mcp.WithString("port",
			mcp.Description("Serial port used to auto-detect the fqbn, e.g. '/dev/cu.usbmodem14101'."),
		),
	), svc.handleCompile)

	srv.AddTool(mcp.NewTool("upload",
		mcp.WithDescription("Upload a compiled Arduino sketch to the board on the given port. If fqbn is omitted it is auto-detected."),
		mcp.WithString("sketch",
			mcp.Required(),
			mcp.Description("Path to the sketch directory."),
		),
		mcp.WithString("port",
			mcp.Required(),
			mcp.Description("Serial port the board is connected to."),
		),
		mcp.WithString("fqbn",
			mcp.Description("Fully Qualified Board Name, e.g. 'arduino:avr:uno'."),
		),
	), svc.handleUpload)

	srv.AddTool(mcp.NewTool("serial_send",
		mcp.WithDescription("Send a line over serial and read one response line."),
		mcp.WithString("port", mcp.Required(), mcp.Description("Serial port to connect to.")),
		mcp.WithNumber("baud", mcp.Required(), mcp.Description("Baud rate, e.g. 9600 or 115200.")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message to send; a newline is appended.")),
		mcp.WithNumber("timeout", mcp.DefaultNumber(2), mcp.Description("Read deadline in seconds.")),
	), svc.handleSerialSend)

	srv.AddTool(mcp.NewTool("serial_write",
		mcp.WithDescription("Send a line over serial without reading a response."),
		mcp.WithString("port", mcp.Required(), mcp.Description("Serial port to connect to.")),
		mcp.WithNumber("baud", mcp.Required(), mcp.Description("Baud rate.")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message to send; a newline is appended.")),
	), svc.handleSerialWrite)

	srv.AddTool(mcp.NewTool("serial_read",
		mcp.WithDescription("Read one line from serial, or return an empty string on timeout."),
		mcp.WithString("port", mcp.Required(), mcp.Description("Serial port to connect to.")),
		mcp.WithNumber("baud", mcp.Required(), mcp.Description("Baud rate.")),
		mcp.WithNumber("timeout", mcp.DefaultNumber(2), mcp.Description("Read deadline in seconds.")),
	), svc.handleSerialRead)

	return srv
}

func (s *Service) handleListPorts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ports, err := s.ListPorts()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(ports, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Service) handlePing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.Ping()), nil
}

func (s *Service) handleCompile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sketch, err := req.RequireString("sketch")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.Compile(ctx, sketch, optString(req, "fqbn"), optString(req, "port"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Service) handleUpload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sketch, err := req.RequireString("sketch")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	port, err := req.RequireString("port")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.Upload(ctx, sketch, port, optString(req, "fqbn"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Service) handleSerialSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	port, baud, err := portAndBaud(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	line, err := s.SerialSend(ctx, port, baud, message, timeoutArg(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(line), nil
}

func (s *Service) handleSerialWrite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	port, baud, err := portAndBaud(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	confirmation, err := s.SerialWrite(ctx, port, baud, message)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(confirmation), nil
}

func (s *Service) handleSerialRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	port, baud, err := portAndBaud(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	line, err := s.SerialRead(ctx, port, baud, timeoutArg(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(line), nil
}

// optString distinguishes "argument absent" from any supplied value.
func optString(req mcp.CallToolRequest, key string) *string {
	args := req.GetArguments()
	if _, ok := args[key]; !ok {
		return nil
	}
	v := req.GetString(key, "")
	return &v
}

func portAndBaud(req mcp.CallToolRequest) (string, int, error) {
	port, err := req.RequireString("port")
	if err != nil {
		return "", 0, err
	}
	baud, err := req.RequireInt("baud")
	if err != nil {
		return "", 0, err
	}
	return port, baud, nil
}

func timeoutArg(req mcp.CallToolRequest) time.Duration {
	secs := req.GetFloat("timeout", 2)
	return time.Duration(secs * float64(time.Second))
}
