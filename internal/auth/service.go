package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"qna/internal/entity"
	"qna/internal/repository"
)

var (
	ErrNoSuchUser        = errors.New("no user with that username")
	ErrBadPassword       = errors.New("password incorrect")
	ErrDuplicateUsername = repository.ErrDuplicateUsername
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Service registers accounts and verifies credentials against the user store.
type Service struct {
	users     repository.UserStore
	passwords PasswordHasher
	now       func() time.Time
}

func NewService(users repository.UserStore, passwords PasswordHasher) *Service {
	return &Service{users: users, passwords: passwords, now: time.Now}
}

// Register creates a user unless the username is taken. The lookup is only
// a fast path: the store's uniqueness constraint decides races.
func (s *Service) Register(ctx context.Context, username, password string) (*entity.User, error) {
	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrDuplicateUsername
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	stored, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  stored,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Verify looks up exactly one user by username and checks the password.
func (s *Service) Verify(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.passwords.Matches(user.Password, password) {
		return nil, ErrBadPassword
	}
	return user, nil
}
