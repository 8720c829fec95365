package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qna/internal/entity"
)

func TestMemoryUserRepository_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &entity.User{ID: uuid.NewString(), Username: "alice", Password: "pw1"}))
	err := repo.Create(ctx, &entity.User{ID: uuid.NewString(), Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "pw1", u.Password)
}

func TestMemoryUserRepository_ConcurrentRegistrationKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.Create(ctx, &entity.User{ID: uuid.NewString(), Username: "alice"}) == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, repo.byID, 1)
}

func TestMemoryQuestionRepository_AnswersKeepOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQuestionRepository()
	id := uuid.NewString()
	require.NoError(t, repo.Create(ctx, &entity.Question{ID: id, Question: "Q", User: "alice"}))

	texts := []string{"one", "two", "three", "four"}
	for _, text := range texts {
		require.NoError(t, repo.AddAnswer(ctx, id, entity.Answer{Text: text, User: "bob"}))
	}

	q, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, q.Answers, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, q.Answers[i].Text)
	}
}

func TestMemoryQuestionRepository_LikeCountsEveryCall(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQuestionRepository()
	id := uuid.NewString()
	require.NoError(t, repo.Create(ctx, &entity.Question{ID: id, Question: "Q", User: "alice"}))

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Like(ctx, id))
	}

	q, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, q.Likes)
}

func TestMemoryQuestionRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQuestionRepository()

	_, err := repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Like(ctx, "nope"), ErrNotFound)
	assert.ErrorIs(t, repo.AddAnswer(ctx, "nope", entity.Answer{Text: "x"}), ErrNotFound)
}

func TestMemoryQuestionRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQuestionRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &entity.Question{
			ID: uuid.NewString(), Question: text, User: "alice", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	qs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, "third", qs[0].Question)
	assert.Equal(t, "first", qs[2].Question)
}

func TestMemoryQuestionRepository_ListOrdersEqualTimestampsByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQuestionRepository()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := []string{
		"11111111-1111-4111-8111-111111111111",
		"33333333-3333-4333-8333-333333333333",
		"22222222-2222-4222-8222-222222222222",
	}
	for _, id := range ids {
		require.NoError(t, repo.Create(ctx, &entity.Question{ID: id, Question: id, User: "alice", CreatedAt: at}))
	}

	for i := 0; i < 10; i++ {
		qs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, qs, 3)
		assert.Equal(t, []string{ids[1], ids[2], ids[0]}, []string{qs[0].ID, qs[1].ID, qs[2].ID})
	}
}

func TestMemoryQuestionRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQuestionRepository()
	id := uuid.NewString()
	require.NoError(t, repo.Create(ctx, &entity.Question{ID: id, Question: "Q", User: "alice"}))
	require.NoError(t, repo.AddAnswer(ctx, id, entity.Answer{Text: "a"}))

	q, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	q.Answers[0].Text = "mutated"
	q.Likes = 100

	again, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Answers[0].Text)
	assert.Zero(t, again.Likes)
}
