package auth

import (
	"context"
	"errors"
	"fmt"

	"qna/internal/entity"
	"qna/internal/repository"
)

// Resolver maps a user to the opaque value kept in the session and back.
type Resolver struct {
	users repository.UserStore
}

func NewResolver(users repository.UserStore) *Resolver {
	return &Resolver{users: users}
}

func (r *Resolver) Serialize(user *entity.User) string {
	return user.ID
}

// Deserialize returns nil without error when the id no longer names a user;
// the caller must then treat the session as anonymous.
func (r *Resolver) Deserialize(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := r.users.FindByID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	return user, nil
}

type contextKey struct{}

func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the principal resolved for the current request, or nil.
func UserFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(contextKey{}).(*entity.User)
	return user
}

func RequireUser(ctx context.Context) (*entity.User, error) {
	if user := UserFromContext(ctx); user != nil {
		return user, nil
	}
	return nil, ErrUnauthenticated
}
