package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-service/internal/domain"
	"quiz-service/internal/repository"
)

const createQuestionsTable = `
CREATE TABLE IF NOT EXISTS questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) repository.QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createQuestionsTable); err != nil {
		return fmt.Errorf("create questions table: %w", err)
	}
	return nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) (int64, error) {
	now := time.Now().UTC()
	question.CreatedAt = now
	question.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO questions (question, created_at, updated_at)
VALUES (?, ?, ?)`,
		question.Text,
		question.CreatedAt,
		question.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("question last insert id: %w", err)
	}
	question.ID = id
	return id, nil
}

func (r *QuestionRepository) Get(ctx context.Context, id int64) (*domain.Question, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, question, created_at, updated_at
FROM questions
WHERE id = ?`,
		id,
	)
	return scanQuestion(row)
}

func (r *QuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, question, created_at, updated_at
FROM questions
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *question)
	}

	return questions, rows.Err()
}

func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM choices WHERE question_id=?`, id); err != nil {
		return fmt.Errorf("delete choices: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("question delete rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit question delete: %w", err)
	}
	return nil
}

func scanQuestion(scanner interface {
	Scan(dest ...any) error
}) (*domain.Question, error) {
	var (
		question  domain.Question
		createdAt time.Time
		updatedAt time.Time
	)

	if err := scanner.Scan(
		&question.ID,
		&question.Text,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}

	question.CreatedAt = createdAt.Local()
	question.UpdatedAt = updatedAt.Local()

	return &question, nil
}
