package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qna/internal/entity"
	"qna/internal/repository"
)

func TestResolver_RoundTrip(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	user, err := NewService(users, PlainHasher{}).Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	resolver := NewResolver(users)
	token := resolver.Serialize(user)
	assert.Equal(t, user.ID, token)

	got, err := resolver.Deserialize(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func TestResolver_UnknownTokenIsAnonymous(t *testing.T) {
	resolver := NewResolver(repository.NewMemoryUserRepository())

	for _, token := range []string{"", "6f1c2a8e-3b7d-4e52-9a1f-0c5d8e7b4a21", "garbage"} {
		user, err := resolver.Deserialize(context.Background(), token)
		assert.NoError(t, err)
		assert.Nil(t, user)
	}
}

func TestResolver_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	resolver := NewResolver(failingUsers{err: boom})

	_, err := resolver.Deserialize(context.Background(), "6f1c2a8e-3b7d-4e52-9a1f-0c5d8e7b4a21")
	assert.ErrorIs(t, err, boom)
}

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserFromContext(ctx))
	_, err := RequireUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	alice := &entity.User{ID: "1", Username: "alice"}
	ctx = WithUser(ctx, alice)
	assert.Same(t, alice, UserFromContext(ctx))

	got, err := RequireUser(ctx)
	require.NoError(t, err)
	assert.Same(t, alice, got)
}
