package repository

import (
	"context"

	"quiz-service/internal/domain"
)

// QuestionRepository exposes persistence operations for Question aggregates.
type QuestionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, question *domain.Question) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Question, error)
	List(ctx context.Context) ([]domain.Question, error)
	Delete(ctx context.Context, id int64) error
}

// ChoiceRepository manages the answer choices attached to questions.
type ChoiceRepository interface {
	Init(ctx context.Context) error
	ReplaceForQuestion(ctx context.Context, questionID int64, choices []domain.Choice) error
	ListByQuestion(ctx context.Context, questionID int64) ([]domain.Choice, error)
}
