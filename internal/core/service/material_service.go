package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// MaterialService implements the study-material use-cases: browsing,
// uploading, liking, and downloading notes.
type MaterialService struct {
	repo     ports.MaterialRepository
	subjects ports.SubjectRepository
	files    ports.FileStore
	now      func() time.Time
	log      zerolog.Logger
}

func NewMaterialService(
	repo ports.MaterialRepository,
	subjects ports.SubjectRepository,
	files ports.FileStore,
	log zerolog.Logger,
) *MaterialService {
	return &MaterialService{repo: repo, subjects: subjects, files: files, now: time.Now, log: log}
}

func (s *MaterialService) List(ctx context.Context, in ports.ListMaterialsInput) (*ports.ListMaterialsResult, error) {
	return s.repo.List(ctx, in)
}

// Get returns a single material and counts the view.
func (s *MaterialService) Get(ctx context.Context, id string) (*domain.Material, error) {
	return s.repo.FindByID(ctx, id, true)
}

// Upload stores the file, creates the material, and bumps the subject's
// denormalised materials counter. The counter update is an explicit service
// step, not a storage-layer side effect, so it is visible and testable.
func (s *MaterialService) Upload(ctx context.Context, userID string, in ports.UploadMaterialInput) (*domain.Material, error) {
	subject, err := s.subjects.FindByID(ctx, in.SubjectID)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, in.Content, in.OriginalName, in.MimeType, in.Size)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyIntermediate
	}

	material, err := s.repo.Create(ctx, &domain.Material{
		Title:        in.Title,
		Description:  in.Description,
		SubjectID:    subject.ID,
		UploadedBy:   userID,
		MaterialType: domain.MaterialType(in.MaterialType),
		File:         *stored,
		Tags:         in.Tags,
		Difficulty:   difficulty,
		AcademicYear: in.AcademicYear,
		Semester:     in.Semester,
		Likes:        []domain.Like{},
		Downloads:    []domain.Download{},
		Approved:     true,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if delErr := s.files.Delete(ctx, stored.Key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", stored.Key).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}

	if err := s.subjects.IncrementMaterialsCount(ctx, subject.ID, 1); err != nil {
		s.log.Warn().Err(err).Str("subject_id", subject.ID).Msg("failed to bump materials count")
	}

	s.log.Info().Str("material_id", material.ID).Str("subject_id", subject.ID).Str("uploaded_by", userID).Msg("material uploaded")
	return material, nil
}

func (s *MaterialService) Update(ctx context.Context, userID, role, id string, in ports.UpdateMaterialInput) (*domain.Material, error) {
	material, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if material.UploadedBy != userID && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	return s.repo.Update(ctx, id, in)
}

// Delete removes the material, its stored file, and decrements the subject
// counter. Owner or admin only.
func (s *MaterialService) Delete(ctx context.Context, userID, role, id string) error {
	material, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	if material.UploadedBy != userID && role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.files.Delete(ctx, material.File.Key); err != nil {
		s.log.Warn().Err(err).Str("key", material.File.Key).Msg("failed to delete stored file")
	}
	if err := s.subjects.IncrementMaterialsCount(ctx, material.SubjectID, -1); err != nil {
		s.log.Warn().Err(err).Str("subject_id", material.SubjectID).Msg("failed to drop materials count")
	}

	s.log.Info().Str("material_id", id).Msg("material deleted")
	return nil
}

func (s *MaterialService) ToggleLike(ctx context.Context, userID, id string) (*domain.Material, error) {
	return s.repo.ToggleLike(ctx, id, userID)
}

// Download records the downloader once and returns the delivery location.
func (s *MaterialService) Download(ctx context.Context, userID, id string) (*ports.DownloadResult, error) {
	material, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordDownload(ctx, id, userID); err != nil {
		s.log.Warn().Err(err).Str("material_id", id).Msg("failed to record download")
	}

	return &ports.DownloadResult{URL: material.File.URL, Filename: material.File.OriginalName}, nil
}
