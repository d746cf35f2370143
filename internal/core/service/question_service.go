package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/ports"
)

// QuestionService implements the Q&A forum use-cases.
type QuestionService struct {
	repo     ports.QuestionRepository
	subjects ports.SubjectRepository
	now      func() time.Time
	log      zerolog.Logger
}

func NewQuestionService(repo ports.QuestionRepository, subjects ports.SubjectRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{repo: repo, subjects: subjects, now: time.Now, log: log}
}

func (s *QuestionService) List(ctx context.Context, in ports.ListQuestionsInput) (*ports.ListQuestionsResult, error) {
	return s.repo.List(ctx, in)
}

// Get returns a single question and counts the view.
func (s *QuestionService) Get(ctx context.Context, id string) (*domain.Question, error) {
	return s.repo.FindByID(ctx, id, true)
}

func (s *QuestionService) Ask(ctx context.Context, authorID string, in ports.AskQuestionInput) (*domain.Question, error) {
	if in.SubjectID != "" {
		if _, err := s.subjects.FindByID(ctx, in.SubjectID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	question, err := s.repo.Create(ctx, &domain.Question{
		Title:     in.Title,
		Body:      in.Body,
		SubjectID: in.SubjectID,
		AuthorID:  authorID,
		Tags:      in.Tags,
		Answers:   []domain.Answer{},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("question_id", question.ID).Str("author_id", authorID).Msg("question asked")
	return question, nil
}

func (s *QuestionService) Answer(ctx context.Context, authorID, questionID, body string) (*domain.Question, error) {
	answer := domain.Answer{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}

	question, err := s.repo.AddAnswer(ctx, questionID, answer)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("question_id", questionID).Str("answer_id", answer.ID).Msg("answer posted")
	return question, nil
}

// AcceptAnswer marks one answer accepted. Only the question author may accept.
func (s *QuestionService) AcceptAnswer(ctx context.Context, userID, questionID, answerID string) (*domain.Question, error) {
	question, err := s.repo.FindByID(ctx, questionID, false)
	if err != nil {
		return nil, err
	}
	if question.AuthorID != userID {
		return nil, domain.ErrForbidden
	}
	if question.Answer(answerID) == nil {
		return nil, domain.ErrAnswerNotFound
	}

	return s.repo.AcceptAnswer(ctx, questionID, answerID)
}

func (s *QuestionService) Delete(ctx context.Context, userID, role, questionID string) error {
	question, err := s.repo.FindByID(ctx, questionID, false)
	if err != nil {
		return err
	}
	if question.AuthorID != userID && role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, questionID); err != nil {
		return err
	}

	s.log.Info().Str("question_id", questionID).Msg("question deleted")
	return nil
}
