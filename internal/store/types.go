package store

import "time"

// CompileRecord captures the outcome of one compile tool call.
type CompileRecord struct {
	Sketch    string    `json:"sketch"`
	FQBN      string    `json:"fqbn"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Duration  string    `json:"duration"`
}

// UploadRecord captures the outcome of one upload tool call.
type UploadRecord struct {
	Sketch    string    `json:"sketch"`
	FQBN      string    `json:"fqbn"`
	Port      string    `json:"port"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Duration  string    `json:"duration"`
}
