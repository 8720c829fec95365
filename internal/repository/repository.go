package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"qna/internal/entity"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("user already exists")
)

// UserStore persists accounts. Implementations must reject a second account
// with the same username with ErrDuplicateUsername.
type UserStore interface {
	Create(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// QuestionStore persists questions with their embedded answers.
// List returns questions newest first.
type QuestionStore interface {
	Create(ctx context.Context, question *entity.Question) error
	List(ctx context.Context) ([]entity.Question, error)
	FindByID(ctx context.Context, id string) (*entity.Question, error)
	AddAnswer(ctx context.Context, id string, answer entity.Answer) error
	Like(ctx context.Context, id string) error
}

// validID reports whether id can name a stored record at all. Malformed ids
// are answered with ErrNotFound without touching the backend.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
