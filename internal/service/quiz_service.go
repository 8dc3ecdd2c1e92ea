package service

import (
	"context"
	"errors"
	"strings"

	"quiz-service/internal/domain"
	"quiz-service/internal/repository"
)

// QuizService coordinates question level operations backed by repositories.
type QuizService interface {
	CreateQuestion(ctx context.Context, text string, choices []domain.Choice) (*domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (*domain.Question, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	ListChoices(ctx context.Context, questionID int64) ([]domain.Choice, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

type quizService struct {
	questions repository.QuestionRepository
	choices   repository.ChoiceRepository
}

func NewQuizService(questions repository.QuestionRepository, choices repository.ChoiceRepository) QuizService {
	return &quizService{
		questions: questions,
		choices:   choices,
	}
}

func (s *quizService) CreateQuestion(ctx context.Context, text string, choices []domain.Choice) (*domain.Question, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("question text is required")
	}

	question := &domain.Question{Text: text}
	if _, err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}

	if len(choices) > 0 {
		if err := s.choices.ReplaceForQuestion(ctx, question.ID, choices); err != nil {
			return nil, err
		}
		stored, err := s.choices.ListByQuestion(ctx, question.ID)
		if err != nil {
			return nil, err
		}
		question.Choices = stored
	}

	return question, nil
}

func (s *quizService) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	question, err := s.questions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	choices, err := s.choices.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Choices = choices
	return question, nil
}

func (s *quizService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range questions {
		choices, err := s.choices.ListByQuestion(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Choices = choices
	}

	return questions, nil
}

// ListChoices returns the choices of a question; a question without any
// choices reports ErrNotFound.
func (s *quizService) ListChoices(ctx context.Context, questionID int64) ([]domain.Choice, error) {
	choices, err := s.choices.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if len(choices) == 0 {
		return nil, repository.ErrNotFound
	}
	return choices, nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, id int64) error {
	return s.questions.Delete(ctx, id)
}
