package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const contentTypeSuffix = ".content-type"

// LocalStore keeps objects under a base directory, sharded two levels deep by key prefix.
type LocalStore struct {
	baseDir   string
	publicURL string
}

// NewLocalStore creates baseDir if needed. publicURL is prepended to keys by URL.
func NewLocalStore(baseDir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalStore) pathFor(key string) string {
	if len(key) < 4 {
		return filepath.Join(s.baseDir, key)
	}
	return filepath.Join(s.baseDir, key[0:2], key[2:4], key)
}

func (s *LocalStore) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	fullPath := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", key, err)
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}

	if err := os.WriteFile(fullPath+contentTypeSuffix, []byte(contentType), 0o644); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to write content type of %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	if err := checkKey(key); err != nil {
		return nil, "", err
	}
	fullPath := s.pathFor(key)
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to open %s: %w", key, err)
	}

	contentType := "application/octet-stream"
	if raw, err := os.ReadFile(fullPath + contentTypeSuffix); err == nil && len(raw) > 0 {
		contentType = string(raw)
	}
	return f, contentType, nil
}

// Remove deletes the object. Missing objects are not an error.
func (s *LocalStore) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	fullPath := s.pathFor(key)
	_ = os.Remove(fullPath + contentTypeSuffix)
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.publicURL == "" {
		return key, nil
	}
	return s.publicURL + "/" + key, nil
}
