package ports

import (
	"context"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// ListQuestionsInput carries the filters for the Q&A list endpoint.
type ListQuestionsInput struct {
	SubjectID string
	Search    string
	Page      int
	Limit     int
}

// ListQuestionsResult is a paginated question listing.
type ListQuestionsResult struct {
	Items      []domain.Question
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AskQuestionInput carries a validated new question.
type AskQuestionInput struct {
	Title     string
	Body      string
	SubjectID string
	Tags      []string
}

// QuestionRepository persists forum questions with embedded answers.
type QuestionRepository interface {
	Create(ctx context.Context, q *domain.Question) (*domain.Question, error)
	FindByID(ctx context.Context, id string, countView bool) (*domain.Question, error)
	List(ctx context.Context, in ListQuestionsInput) (*ListQuestionsResult, error)
	Delete(ctx context.Context, id string) error
	AddAnswer(ctx context.Context, id string, answer domain.Answer) (*domain.Question, error)
	// AcceptAnswer marks one answer accepted and clears the flag on the rest.
	AcceptAnswer(ctx context.Context, id, answerID string) (*domain.Question, error)
}

// QuestionService defines the Q&A forum use-cases.
type QuestionService interface {
	List(ctx context.Context, in ListQuestionsInput) (*ListQuestionsResult, error)
	Get(ctx context.Context, id string) (*domain.Question, error)
	Ask(ctx context.Context, authorID string, in AskQuestionInput) (*domain.Question, error)
	Answer(ctx context.Context, authorID, questionID, body string) (*domain.Question, error)
	AcceptAnswer(ctx context.Context, userID, questionID, answerID string) (*domain.Question, error)
	Delete(ctx context.Context, userID, role, questionID string) error
}
