// Package store persists a history of compile and upload outcomes under
// the workspace .arduino-mcp directory.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store appends operation records to JSON files. Failures to record are
// the caller's to ignore; history is advisory and never blocks a tool
// call.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at the given directory (typically
// <workspace>/.arduino-mcp).
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) historyDir() string {
	return filepath.Join(s.root, "history")
}

// AddCompile appends a compile record.
func (s *Store) AddCompile(r CompileRecord) error {
	return s.appendRecord("compiles.json", r)
}

// AddUpload appends an upload record.
func (s *Store) AddUpload(r UploadRecord) error {
	return s.appendRecord("uploads.json", r)
}

// Compiles returns all compile records in append order.
func (s *Store) Compiles() ([]CompileRecord, error) {
	var records []CompileRecord
	err := s.loadRecords("compiles.json", &records)
	return records, err
}

// Uploads returns all upload records in append order.
func (s *Store) Uploads() ([]UploadRecord, error) {
	var records []UploadRecord
	err := s.loadRecords("uploads.json", &records)
	return records, err
}

func (s *Store) appendRecord(filename string, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.historyDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, filename)

	var records []json.RawMessage
	if data, err := os.ReadFile(path); err == nil {
		json.Unmarshal(data, &records)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	records = append(records, raw)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) loadRecords(filename string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.historyDir(), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
