package ports

import (
	"context"
	"io"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// FileStore persists uploaded material files and serves them by URL.
type FileStore interface {
	Save(ctx context.Context, r io.Reader, originalName, mimeType string, size int64) (*domain.StoredFile, error)
	Delete(ctx context.Context, key string) error
}
