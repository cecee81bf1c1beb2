package board

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const sampleListing = `{
  "detected_ports": [
    {
      "port": {"address": "/dev/cu.usbmodem14101", "protocol": "serial"},
      "matching_boards": [
        {"name": "Arduino Uno", "fqbn": "arduino:avr:uno"},
        {"name": "Arduino Uno Mini", "fqbn": "arduino:avr:unomini"}
      ]
    },
    {
      "port": {"address": "/dev/cu.Bluetooth-Incoming-Port", "protocol": "serial"},
      "matching_boards": []
    }
  ]
}`

type fakeRunner struct {
	stdout string
	err    error
	calls  int
	args   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (string, error) {
	f.calls++
	f.args = append(f.args, append([]string(nil), args...))
	return f.stdout, f.err
}

func TestListBoardsParsesListing(t *testing.T) {
	fr := &fakeRunner{stdout: sampleListing}
	reg := NewRegistry(fr, NewCache(0), nil)

	ports, err := reg.ListBoards(context.Background())
	if err != nil {
		t.Fatalf("ListBoards returned error: %v", err)
	}
	if len(ports) != 2 {
		t.Fatalf("expected 2 detected ports, got=%d", len(ports))
	}
	if ports[0].Address != "/dev/cu.usbmodem14101" {
		t.Errorf("unexpected address: %s", ports[0].Address)
	}
	if len(ports[0].Matches) != 2 || ports[0].Matches[0].FQBN != "arduino:avr:uno" {
		t.Errorf("unexpected matches: %+v", ports[0].Matches)
	}
	if len(ports[1].Matches) != 0 {
		t.Errorf("expected no matches for second port, got=%+v", ports[1].Matches)
	}

	want := []string{"board", "list", "--format", "json"}
	if len(fr.args) != 1 || strings.Join(fr.args[0], " ") != strings.Join(want, " ") {
		t.Errorf("unexpected toolchain args: %v", fr.args)
	}
}

func TestResolvePicksFirstMatch(t *testing.T) {
	fr := &fakeRunner{stdout: sampleListing}
	reg := NewRegistry(fr, NewCache(0), nil)

	fqbn, err := reg.Resolve(context.Background(), "/dev/cu.usbmodem14101")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if fqbn != "arduino:avr:uno" {
		t.Errorf("expected first match arduino:avr:uno, got=%s", fqbn)
	}
}

func TestResolveSecondCallServesFromCache(t *testing.T) {
	fr := &fakeRunner{stdout: sampleListing}
	reg := NewRegistry(fr, NewCache(0), nil)

	first, err := reg.Resolve(context.Background(), "/dev/cu.usbmodem14101")
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.Resolve(context.Background(), "/dev/cu.usbmodem14101")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("resolution not stable: %s vs %s", first, second)
	}
	if fr.calls != 1 {
		t.Errorf("expected exactly one scan, got=%d", fr.calls)
	}
}

func TestResolveUnknownPort(t *testing.T) {
	fr := &fakeRunner{stdout: sampleListing}
	reg := NewRegistry(fr, NewCache(0), nil)

	_, err := reg.Resolve(context.Background(), "/dev/ttyUSB9")
	if err == nil {
		t.Fatal("expected resolution error")
	}
	var rerr *ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ResolutionError, got %T", err)
	}
	if rerr.Port != "/dev/ttyUSB9" {
		t.Errorf("unexpected port in error: %s", rerr.Port)
	}
	if !strings.Contains(rerr.Raw, "detected_ports") {
		t.Error("expected raw listing embedded in error")
	}
}

func TestResolvePortWithNoMatches(t *testing.T) {
	fr := &fakeRunner{stdout: sampleListing}
	reg := NewRegistry(fr, NewCache(0), nil)

	_, err := reg.Resolve(context.Background(), "/dev/cu.Bluetooth-Incoming-Port")
	var rerr *ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *ResolutionError, got %v", err)
	}
}

func TestResolveScanFailure(t *testing.T) {
	fr := &fakeRunner{err: errors.New("exec: arduino-cli not found")}
	reg := NewRegistry(fr, NewCache(0), nil)

	_, err := reg.Resolve(context.Background(), "/dev/ttyACM0")
	if err == nil {
		t.Fatal("expected error when scan fails")
	}
}

func TestResolveMalformedListing(t *testing.T) {
	fr := &fakeRunner{stdout: "not json at all"}
	reg := NewRegistry(fr, NewCache(0), nil)

	_, err := reg.Resolve(context.Background(), "/dev/ttyACM0")
	if err == nil || !strings.Contains(err.Error(), "not json at all") {
		t.Errorf("expected raw output embedded in parse error, got=%v", err)
	}
}

func TestWarmPrimesCache(t *testing.T) {
	fr := &fakeRunner{stdout: sampleListing}
	cache := NewCache(0)
	reg := NewRegistry(fr, cache, nil)

	if err := reg.Warm(context.Background()); err != nil {
		t.Fatalf("Warm returned error: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("expected one primed entry, got=%d", cache.Len())
	}

	// A resolve after warm-up must not trigger another scan.
	fqbn, err := reg.Resolve(context.Background(), "/dev/cu.usbmodem14101")
	if err != nil {
		t.Fatal(err)
	}
	if fqbn != "arduino:avr:uno" {
		t.Errorf("expected primed FQBN, got=%s", fqbn)
	}
	if fr.calls != 1 {
		t.Errorf("expected warm-up scan only, got=%d calls", fr.calls)
	}
}
