// Package validate checks board identifiers and serial port names before
// they are spliced into arduino-cli argument lists or serial open calls.
package validate

import (
	"fmt"
	"regexp"
)

var (
	// An FQBN is vendor:architecture:board, each segment non-empty word
	// characters. No wildcards, case-sensitive.
	fqbnRe = regexp.MustCompile(`^\w+:\w+:\w+$`)

	// Windows COM ports or Unix device paths under /dev/tty* or /dev/cu*.
	portRe = regexp.MustCompile(`^(COM[0-9]+|/dev/(tty|cu)[\w.-]+)$`)
)

// Error reports a value that failed validation for a named field.
type Error struct {
	Field string
	Value string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// FQBN reports whether s is a well-formed fully qualified board name.
func FQBN(s string) bool {
	return fqbnRe.MatchString(s)
}

// Port reports whether s is a well-formed serial port name.
func Port(s string) bool {
	return portRe.MatchString(s)
}

// CheckFQBN returns a *Error if s is not a well-formed FQBN.
func CheckFQBN(s string) error {
	if !FQBN(s) {
		return &Error{Field: "fqbn", Value: s}
	}
	return nil
}

// CheckPort returns a *Error if s is not a well-formed port name.
func CheckPort(s string) error {
	if !Port(s) {
		return &Error{Field: "port", Value: s}
	}
	return nil
}
