// Package serialio provides serial port enumeration and one-shot
// line-oriented serial transactions.
package serialio

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes one serial port as reported by the operating system.
type PortInfo struct {
	Device      string `json:"device"`
	Description string `json:"description"`
	HWID        string `json:"hwid"`
}

// getPortsList is swapped in tests.
var getPortsList = enumerator.GetDetailedPortsList

// ListPorts enumerates serial ports directly from the OS, without going
// through arduino-cli. Values are produced locally and need no validation.
func ListPorts() ([]PortInfo, error) {
	ports, err := getPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	result := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		info := PortInfo{
			Device:      p.Name,
			Description: p.Product,
			HWID:        "n/a",
		}
		if info.Description == "" {
			info.Description = "n/a"
		}
		if p.IsUSB {
			info.HWID = fmt.Sprintf("USB VID:PID=%s:%s", p.VID, p.PID)
			if p.SerialNumber != "" {
				info.HWID += " SER=" + p.SerialNumber
			}
		}
		result = append(result, info)
	}
	return result, nil
}
