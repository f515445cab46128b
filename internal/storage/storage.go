package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/bookclub-events/internal/event"
)

// ErrMissingInput is returned when a location to read does not exist
var ErrMissingInput = errors.New("input not found")

// Format is a batch encoding
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
)

// FormatFor picks the format from a location's extension
func FormatFor(location string) Format {
	if strings.EqualFold(filepath.Ext(location), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// Storage reads and writes locations. The S3 client is created on first use.
type Storage struct {
	s3    ObjectStore
	newS3 func(ctx context.Context) (ObjectStore, error)
}

// Option configures a Storage
type Option func(*Storage)

// WithObjectStore makes s3:// locations use client instead of one built from
// the default AWS configuration.
func WithObjectStore(client ObjectStore) Option {
	return func(s *Storage) {
		s.s3 = client
	}
}

// New creates a Storage
func New(opts ...Option) *Storage {
	s := &Storage{newS3: defaultObjectStore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the contents of location. It returns an error wrapping
// ErrMissingInput when the location does not exist.
func (s *Storage) Read(ctx context.Context, location string) ([]byte, error) {
	if loc, ok := parseS3(location); ok {
		client, err := s.objectStore(ctx)
		if err != nil {
			return nil, err
		}
		return getObject(ctx, client, loc)
	}

	path, err := expandHome(location)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", location, ErrMissingInput)
		}
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

// Write replaces the contents of location with data
func (s *Storage) Write(ctx context.Context, location string, data []byte) error {
	if loc, ok := parseS3(location); ok {
		client, err := s.objectStore(ctx)
		if err != nil {
			return err
		}
		return putObject(ctx, client, loc, data, contentType(location))
	}

	path, err := expandHome(location)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// LoadBatch reads and decodes the batch stored at location
func (s *Storage) LoadBatch(ctx context.Context, location string) (*event.Batch, error) {
	data, err := s.Read(ctx, location)
	if err != nil {
		return nil, err
	}

	var b *event.Batch
	switch FormatFor(location) {
	case FormatJSON:
		b, err = DecodeJSON(data)
	default:
		b, err = DecodeCSV(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}
	return b, nil
}

// SaveBatch encodes b and writes it to location
func (s *Storage) SaveBatch(ctx context.Context, location string, b *event.Batch) error {
	var buf bytes.Buffer
	var err error
	switch FormatFor(location) {
	case FormatJSON:
		err = EncodeJSON(&buf, b)
	default:
		err = EncodeCSV(&buf, b)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", location, err)
	}
	return s.Write(ctx, location, buf.Bytes())
}

func (s *Storage) objectStore(ctx context.Context) (ObjectStore, error) {
	if s.s3 == nil {
		client, err := s.newS3(ctx)
		if err != nil {
			return nil, err
		}
		s.s3 = client
	}
	return s.s3, nil
}

// expandHome expands a leading ~/ to the user's home directory
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place. Missing parent directories are created.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func contentType(location string) string {
	if FormatFor(location) == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}
