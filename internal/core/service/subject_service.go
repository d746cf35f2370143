package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// SubjectService implements the subject catalogue use-cases. Creation,
// update, and deletion are admin-only.
type SubjectService struct {
	repo      ports.SubjectRepository
	materials ports.MaterialRepository
	log       zerolog.Logger
}

func NewSubjectService(repo ports.SubjectRepository, materials ports.MaterialRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{repo: repo, materials: materials, log: log}
}

func (s *SubjectService) List(ctx context.Context, in ports.ListSubjectsInput) (*ports.ListSubjectsResult, error) {
	return s.repo.List(ctx, in)
}

func (s *SubjectService) Get(ctx context.Context, id string) (*domain.Subject, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SubjectService) Create(ctx context.Context, role string, in ports.CreateSubjectInput) (*domain.Subject, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	subject := &domain.Subject{
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Description: in.Description,
		Department:  strings.TrimSpace(in.Department),
		Semester:    in.Semester,
		Credits:     in.Credits,
		Tags:        in.Tags,
		Active:      true,
	}

	created, err := s.repo.Create(ctx, subject)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("subject_id", created.ID).Str("code", created.Code).Msg("subject created")
	return created, nil
}

func (s *SubjectService) Update(ctx context.Context, role, id string, in ports.CreateSubjectInput) (*domain.Subject, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	return s.repo.Update(ctx, id, in)
}

// Delete removes a subject unless materials still reference it.
func (s *SubjectService) Delete(ctx context.Context, role, id string) error {
	if role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.materials.CountBySubject(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrSubjectHasMaterials
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("subject_id", id).Msg("subject deleted")
	return nil
}
