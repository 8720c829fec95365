package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"qna/internal/entity"
)

type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(ctx context.Context, q *entity.Question) error {
	answers, err := json.Marshal(nonNilAnswers(q.Answers))
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO questions (id, question, author, answers, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, q.ID, q.Question, q.User, string(answers), q.Likes, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) List(ctx context.Context) ([]entity.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question, author, answers, likes, created_at
		FROM questions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	var questions []entity.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*entity.Question, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, question, author, answers, likes, created_at
		FROM questions
		WHERE id = $1
	`, id)

	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return q, err
}

// AddAnswer appends in a single statement so concurrent answers keep
// the order in which the database applied them.
func (r *QuestionRepository) AddAnswer(ctx context.Context, id string, answer entity.Answer) error {
	if !validID(id) {
		return ErrNotFound
	}
	payload, err := json.Marshal([]entity.Answer{answer})
	if err != nil {
		return fmt.Errorf("encode answer: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE questions SET answers = answers || $2::jsonb WHERE id = $1
	`, id, string(payload))
	if err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	return requireAffected(res)
}

func (r *QuestionRepository) Like(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE questions SET likes = likes + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("like question: %w", err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(s scanner) (*entity.Question, error) {
	var (
		q       entity.Question
		answers []byte
	)
	if err := s.Scan(&q.ID, &q.Question, &q.User, &answers, &q.Likes, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &q.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	return &q, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNilAnswers(a []entity.Answer) []entity.Answer {
	if a == nil {
		return []entity.Answer{}
	}
	return a
}
