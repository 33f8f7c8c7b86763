// Package store loads and persists the codes document as one JSON file.
// The document is read and written wholesale; there is no partial or
// streaming update, and a save either fully replaces the file or leaves
// it untouched.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kkkkikiki/shiftsweep/internal/model"
)

// Store reads and writes the codes document at a fixed path.
type Store struct {
	path string
}

// New returns a Store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the document path, e.g. for the publisher.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the whole document. A missing file, invalid
// JSON, or an unexpected shape is a fatal input error for the run.
func (s *Store) Load() (model.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s (run the scraper first to generate it, or pass the correct path with --file)", s.path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if len(doc) == 0 || doc[0].Codes == nil {
		return nil, fmt.Errorf("unexpected format in %s: want an array whose first element has a codes list", s.path)
	}
	return doc, nil
}

// Save writes the whole document back. The write goes to a temp file in
// the same directory and is renamed into place, so readers never observe
// a half-written document.
func (s *Store) Save(doc model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
