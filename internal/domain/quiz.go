package domain

import "time"

// Question is a quiz question together with its answer choices.
type Question struct {
	ID        int64
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Choices   []Choice
}

// Choice is a single answer option belonging to a question.
type Choice struct {
	ID         int64
	QuestionID int64
	Text       string
	IsCorrect  bool
}
