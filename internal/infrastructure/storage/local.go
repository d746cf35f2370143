package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// LocalStore persists uploads on the local filesystem under a base directory
// and serves them via the /uploads static route.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save streams the upload to disk under a random key that keeps the original
// extension. The original name is never used as a path component.
func (s *LocalStore) Save(_ context.Context, r io.Reader, originalName, mimeType string, size int64) (*domain.StoredFile, error) {
	key := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.baseDir, key)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}
	if size > 0 && written != size {
		_ = os.Remove(path)
		return nil, fmt.Errorf("short write: got %d bytes, want %d", written, size)
	}

	return &domain.StoredFile{
		Key:          key,
		URL:          s.baseURL + "/uploads/" + key,
		OriginalName: originalName,
		Size:         written,
		MimeType:     mimeType,
	}, nil
}

// Delete removes the stored file. Missing files are not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	path := filepath.Join(s.baseDir, filepath.Base(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Dir exposes the base directory for static file serving.
func (s *LocalStore) Dir() string {
	return s.baseDir
}
