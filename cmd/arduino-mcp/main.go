package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mark3labs/mcp-go/server"

	"github.com/amahpour/arduino-mcp-server-simple/internal/board"
	"github.com/amahpour/arduino-mcp-server-simple/internal/cli"
	"github.com/amahpour/arduino-mcp-server-simple/internal/config"
	"github.com/amahpour/arduino-mcp-server-simple/internal/gate"
	"github.com/amahpour/arduino-mcp-server-simple/internal/serialio"
	"github.com/amahpour/arduino-mcp-server-simple/internal/store"
	"github.com/amahpour/arduino-mcp-server-simple/internal/tools"
	"github.com/amahpour/arduino-mcp-server-simple/internal/tui"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "monitor" {
		if err := runMonitor(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runServer starts the MCP stdio server. Stdout belongs to the MCP
// transport, so all logging goes to stderr.
func runServer() error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	workspace := cli.ResolveWorkspace("")
	cfg := config.Load(workspace)
	if cfg.Workspace != "" && os.Getenv(cli.WorkspaceEnv) == "" {
		workspace = cfg.Workspace
	}

	gt := gate.New(cfg.GateWidth)
	runner := cli.NewRunner(cfg.CLIBin, workspace, gt, log)
	cache := board.NewCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	registry := board.NewRegistry(runner, cache, log)
	tx := serialio.NewTransactor(gt)
	hist := store.New(filepath.Join(workspace, ".arduino-mcp"))

	svc := tools.NewService(registry, runner, tx, hist, log)
	svc.DefaultTimeout = time.Duration(cfg.SerialTimeoutSeconds * float64(time.Second))

	log.Info("starting arduino-mcp", "version", version, "workspace", workspace)

	// Prime the port→FQBN cache; a failed scan (no arduino-cli, no
	// boards) must not stop the server.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := registry.Warm(ctx); err != nil {
		log.Warn("board detection scan failed", "err", err)
	}
	cancel()

	return server.ServeStdio(tools.NewServer(svc, version))
}

// runMonitor starts the interactive serial monitor.
func runMonitor(args []string) error {
	cfg := config.Load(cli.ResolveWorkspace(""))

	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	port := fs.String("p", "", "serial port to open")
	baud := fs.Int("b", cfg.SerialBaudRate, "baud rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *port == "" {
		return fmt.Errorf("monitor requires a port: arduino-mcp monitor -p /dev/ttyACM0")
	}

	monitor := serialio.NewMonitor()
	if err := monitor.Connect(*port, *baud); err != nil {
		return fmt.Errorf("open %s: %w", *port, err)
	}
	defer monitor.Disconnect()

	p := tea.NewProgram(tui.NewMonitorModel(monitor, *port, *baud), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
