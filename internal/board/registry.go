// Package board resolves which Arduino board is attached to a serial port
// by querying arduino-cli's board listing and caching the answer.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Runner executes an arduino-cli subcommand and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// Match is one candidate board for a detected port.
type Match struct {
	Name string `json:"name"`
	FQBN string `json:"fqbn"`
}

// DetectedPort is one record in arduino-cli's board listing: a port
// address paired with zero or more candidate boards.
type DetectedPort struct {
	Address  string
	Protocol string
	Matches  []Match
}

// ResolutionError reports that no FQBN could be determined for a port.
// Raw carries the toolchain's board listing verbatim for diagnosis.
type ResolutionError struct {
	Port string
	Raw  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not auto-detect FQBN for port %s\narduino-cli board list output: %s\nspecify fqbn explicitly", e.Port, e.Raw)
}

// boardList mirrors the JSON shape of `arduino-cli board list --format json`.
type boardList struct {
	DetectedPorts []struct {
		Port struct {
			Address  string `json:"address"`
			Protocol string `json:"protocol"`
		} `json:"port"`
		MatchingBoards []Match `json:"matching_boards"`
	} `json:"detected_ports"`
}

// Registry answers "which board is on this port" from a cache, falling
// back to a live toolchain scan on miss.
type Registry struct {
	runner Runner
	cache  *Cache
	log    *slog.Logger
}

// NewRegistry returns a Registry using runner for scans and cache for
// resolved entries.
func NewRegistry(runner Runner, cache *Cache, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{runner: runner, cache: cache, log: log}
}

// ListBoards runs one board scan and returns the detected ports in
// toolchain list order.
func (r *Registry) ListBoards(ctx context.Context) ([]DetectedPort, error) {
	ports, _, err := r.scan(ctx)
	return ports, err
}

func (r *Registry) scan(ctx context.Context) ([]DetectedPort, string, error) {
	raw, err := r.runner.Run(ctx, "board", "list", "--format", "json")
	if err != nil {
		return nil, "", fmt.Errorf("board list: %w", err)
	}

	var list boardList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, "", fmt.Errorf("parse board list output: %w\noutput: %s", err, raw)
	}

	ports := make([]DetectedPort, 0, len(list.DetectedPorts))
	for _, dp := range list.DetectedPorts {
		ports = append(ports, DetectedPort{
			Address:  dp.Port.Address,
			Protocol: dp.Port.Protocol,
			Matches:  dp.MatchingBoards,
		})
	}
	return ports, raw, nil
}

// Resolve returns the FQBN for the board attached at port. The cache is
// consulted first; on miss one live scan is performed and the first
// non-empty FQBN among the port's matches is taken, in toolchain list
// order. A successful resolution is written back to the cache.
func (r *Registry) Resolve(ctx context.Context, port string) (string, error) {
	if fqbn, ok := r.cache.Get(port); ok {
		return fqbn, nil
	}

	ports, raw, err := r.scan(ctx)
	if err != nil {
		return "", err
	}

	for _, dp := range ports {
		if dp.Address != port {
			continue
		}
		for _, m := range dp.Matches {
			if m.FQBN != "" {
				r.cache.Put(port, m.FQBN)
				return m.FQBN, nil
			}
		}
	}

	return "", &ResolutionError{Port: port, Raw: raw}
}

// Warm performs one scan at startup and primes the cache for every port
// with a recognized board. Ports without a match are logged and skipped;
// the scan itself failing is reported to the caller, who may treat it as
// non-fatal.
func (r *Registry) Warm(ctx context.Context) error {
	ports, _, err := r.scan(ctx)
	if err != nil {
		return err
	}

	for _, dp := range ports {
		found := false
		for _, m := range dp.Matches {
			if m.FQBN != "" {
				r.cache.Put(dp.Address, m.FQBN)
				r.log.Info("board detected", "port", dp.Address, "fqbn", m.FQBN, "name", m.Name)
				found = true
				break
			}
		}
		if !found {
			r.log.Warn("no board identifier detected; board may be unrecognized or missing its core", "port", dp.Address)
		}
	}
	return nil
}
