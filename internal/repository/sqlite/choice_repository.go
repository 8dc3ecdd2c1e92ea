package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"quiz-service/internal/domain"
	"quiz-service/internal/repository"
)

const createChoicesTable = `
CREATE TABLE IF NOT EXISTS choices (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question_id INTEGER NOT NULL,
	choice TEXT NOT NULL,
	is_correct INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(question_id) REFERENCES questions(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_choices_question_id ON choices(question_id);
`

type ChoiceRepository struct {
	db *sql.DB
}

func NewChoiceRepository(db *sql.DB) repository.ChoiceRepository {
	return &ChoiceRepository{db: db}
}

func (r *ChoiceRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createChoicesTable); err != nil {
		return fmt.Errorf("create choices table: %w", err)
	}
	return nil
}

func (r *ChoiceRepository) ReplaceForQuestion(ctx context.Context, questionID int64, choices []domain.Choice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM choices WHERE question_id=?`, questionID); err != nil {
		return fmt.Errorf("delete choices: %w", err)
	}

	for _, choice := range choices {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO choices (question_id, choice, is_correct)
VALUES (?, ?, ?)`,
			questionID,
			choice.Text,
			choice.IsCorrect,
		); err != nil {
			return fmt.Errorf("insert choice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *ChoiceRepository) ListByQuestion(ctx context.Context, questionID int64) ([]domain.Choice, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, question_id, choice, is_correct
FROM choices
WHERE question_id=?
ORDER BY id ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	var choices []domain.Choice
	for rows.Next() {
		var choice domain.Choice
		if err := rows.Scan(&choice.ID, &choice.QuestionID, &choice.Text, &choice.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		choices = append(choices, choice)
	}

	return choices, rows.Err()
}
