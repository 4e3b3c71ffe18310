package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/model"
)

// JSONFileStore keeps the collection as a single JSON document on disk
type JSONFileStore struct {
	path string
}

// NewJSONFileStore creates the store and bootstraps the file if it does not exist
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path}
	if err := s.init(); err != nil {
		return nil, wrap("init", err)
	}
	return s, nil
}

// Path returns the location of the backing document
func (s *JSONFileStore) Path() string {
	return s.path
}

func (s *JSONFileStore) init() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := s.write([]model.Greeting{}); err != nil {
		return err
	}
	logrus.WithField("path", s.path).Info("Created greetings file")
	return nil
}

// LoadAll reads the whole collection
func (s *JSONFileStore) LoadAll(ctx context.Context) ([]model.Greeting, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		// reads never write; the next SaveAll recreates the file
		return []model.Greeting{}, nil
	}
	if err != nil {
		return nil, wrap("load", err)
	}

	var greetings []model.Greeting
	if err := json.Unmarshal(data, &greetings); err != nil {
		return nil, wrap("load", fmt.Errorf("failed to decode %s: %w", s.path, err))
	}
	if greetings == nil {
		greetings = []model.Greeting{}
	}
	return greetings, nil
}

// SaveAll replaces the document with greetings
func (s *JSONFileStore) SaveAll(ctx context.Context, greetings []model.Greeting) error {
	return wrap("save", s.write(greetings))
}

// write goes through a temp file and rename so readers never see a partial document
func (s *JSONFileStore) write(greetings []model.Greeting) error {
	if greetings == nil {
		greetings = []model.Greeting{}
	}

	data, err := json.MarshalIndent(greetings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode greetings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".greetings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Ping checks that the document can still be read
func (s *JSONFileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return wrap("ping", err)
	}
	return nil
}

func (s *JSONFileStore) Close() error {
	return nil
}
