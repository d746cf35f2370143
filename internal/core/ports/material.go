package ports

import (
	"context"
	"io"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// ListMaterialsInput carries the filters for the material list endpoint.
type ListMaterialsInput struct {
	SubjectID    string
	MaterialType string
	Semester     int
	Difficulty   string
	Search       string
	Sort         string
	Page         int
	Limit        int
}

// ListMaterialsResult is a paginated material listing.
type ListMaterialsResult struct {
	Items      []domain.Material
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UploadMaterialInput carries a validated upload request. Content is the
// file body; the service hands it to the file store before persisting.
type UploadMaterialInput struct {
	Title        string
	Description  string
	SubjectID    string
	MaterialType string
	Tags         []string
	Difficulty   string
	AcademicYear string
	Semester     int

	Content      io.Reader
	OriginalName string
	MimeType     string
	Size         int64
}

// UpdateMaterialInput carries the mutable metadata fields.
type UpdateMaterialInput struct {
	Title        string
	Description  string
	Tags         []string
	Difficulty   string
	AcademicYear string
	Semester     int
}

// DownloadResult is returned when a download is recorded.
type DownloadResult struct {
	URL      string
	Filename string
}

// MaterialRepository persists materials.
type MaterialRepository interface {
	Create(ctx context.Context, m *domain.Material) (*domain.Material, error)
	// FindByID returns the material and bumps its view counter when
	// countView is set, in one update.
	FindByID(ctx context.Context, id string, countView bool) (*domain.Material, error)
	List(ctx context.Context, in ListMaterialsInput) (*ListMaterialsResult, error)
	Update(ctx context.Context, id string, in UpdateMaterialInput) (*domain.Material, error)
	Delete(ctx context.Context, id string) error
	// ToggleLike adds the user's like, or removes it when present, atomically.
	ToggleLike(ctx context.Context, id, userID string) (*domain.Material, error)
	// RecordDownload appends the user to the download log unless already there.
	RecordDownload(ctx context.Context, id, userID string) error
	CountBySubject(ctx context.Context, subjectID string) (int64, error)
}

// MaterialService defines the study-material use-cases.
type MaterialService interface {
	List(ctx context.Context, in ListMaterialsInput) (*ListMaterialsResult, error)
	Get(ctx context.Context, id string) (*domain.Material, error)
	Upload(ctx context.Context, userID string, in UploadMaterialInput) (*domain.Material, error)
	Update(ctx context.Context, userID, role, id string, in UpdateMaterialInput) (*domain.Material, error)
	Delete(ctx context.Context, userID, role, id string) error
	ToggleLike(ctx context.Context, userID, id string) (*domain.Material, error)
	Download(ctx context.Context, userID, id string) (*DownloadResult, error)
}
