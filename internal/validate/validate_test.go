package validate

import (
	"errors"
	"testing"
)

func TestFQBNAccepted(t *testing.T) {
	valid := []string{
		"arduino:avr:uno",
		"arduino:avr:mega2560",
		"esp32:esp32:esp32_s3",
		"a:b:c",
	}
	for _, s := range valid {
		if !FQBN(s) {
			t.Errorf("expected %q to be a valid FQBN", s)
		}
	}
}

func TestFQBNRejected(t *testing.T) {
	invalid := []string{
		"",
		"arduino:avr",
		"arduino:avr:uno:extra",
		"arduino::uno",
		":avr:uno",
		"arduino:avr:",
		"arduino:avr:uno; rm -rf /",
		"arduino avr uno",
		"arduino:avr:un-o",
	}
	for _, s := range invalid {
		if FQBN(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestPortAccepted(t *testing.T) {
	valid := []string{
		"COM3",
		"COM12",
		"/dev/ttyUSB0",
		"/dev/ttyACM0",
		"/dev/cu.usbmodem1234",
		"/dev/cu.usbserial-0001",
	}
	for _, s := range valid {
		if !Port(s) {
			t.Errorf("expected %q to be a valid port", s)
		}
	}
}

func TestPortRejected(t *testing.T) {
	invalid := []string{
		"",
		"COM",
		"LPT1",
		"/dev/sda1",
		"/dev/tty USB0",
		"/dev/cu.usbmodem1234; reboot",
		"ttyUSB0",
		"/dev/ttyUSB0|cat",
	}
	for _, s := range invalid {
		if Port(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestCheckFQBNError(t *testing.T) {
	err := CheckFQBN("not-a-board")
	if err == nil {
		t.Fatal("expected error")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if verr.Field != "fqbn" {
		t.Errorf("expected field=fqbn, got=%s", verr.Field)
	}
	if verr.Value != "not-a-board" {
		t.Errorf("expected offending value in error, got=%s", verr.Value)
	}

	if err := CheckFQBN("arduino:avr:uno"); err != nil {
		t.Errorf("unexpected error for valid FQBN: %v", err)
	}
}

func TestCheckPortError(t *testing.T) {
	err := CheckPort("bogus")
	if err == nil {
		t.Fatal("expected error")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if verr.Field != "port" {
		t.Errorf("expected field=port, got=%s", verr.Field)
	}
}
