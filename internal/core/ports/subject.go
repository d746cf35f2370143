package ports

import (
	"context"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// ListSubjectsInput carries the filters for the subject list endpoint.
type ListSubjectsInput struct {
	Department string
	Semester   int
	Search     string
	Sort       string
	Page       int
	Limit      int
}

// ListSubjectsResult is a paginated subject listing.
type ListSubjectsResult struct {
	Items      []domain.Subject
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CreateSubjectInput carries a validated create/update request.
type CreateSubjectInput struct {
	Name        string
	Code        string
	Description string
	Department  string
	Semester    int
	Credits     int
	Tags        []string
}

// SubjectRepository persists subjects.
type SubjectRepository interface {
	Create(ctx context.Context, s *domain.Subject) (*domain.Subject, error)
	FindByID(ctx context.Context, id string) (*domain.Subject, error)
	List(ctx context.Context, in ListSubjectsInput) (*ListSubjectsResult, error)
	Update(ctx context.Context, id string, in CreateSubjectInput) (*domain.Subject, error)
	Delete(ctx context.Context, id string) error
	// IncrementMaterialsCount adjusts the denormalised counter by delta.
	IncrementMaterialsCount(ctx context.Context, id string, delta int) error
}

// SubjectService defines the subject use-cases. Writes are admin-only; the
// role check lives in the service, not the transport.
type SubjectService interface {
	List(ctx context.Context, in ListSubjectsInput) (*ListSubjectsResult, error)
	Get(ctx context.Context, id string) (*domain.Subject, error)
	Create(ctx context.Context, role string, in CreateSubjectInput) (*domain.Subject, error)
	Update(ctx context.Context, role, id string, in CreateSubjectInput) (*domain.Subject, error)
	Delete(ctx context.Context, role, id string) error
}
