package repository

import (
	"context"
	"sort"
	"sync"

	"qna/internal/entity"
)

// MemoryUserRepository keeps users in process memory. Used by the
// "memory" store driver and by tests.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[string]entity.User
	byName map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   make(map[string]entity.User),
		byName: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[user.Username]; taken {
		return ErrDuplicateUsername
	}
	r.byID[user.ID] = *user
	r.byName[user.Username] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type MemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions map[string]*entity.Question
}

func NewMemoryQuestionRepository() *MemoryQuestionRepository {
	return &MemoryQuestionRepository{questions: make(map[string]*entity.Question)}
}

func (r *MemoryQuestionRepository) Create(_ context.Context, q *entity.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyQuestion(q)
	stored.Answers = nonNilAnswers(stored.Answers)
	r.questions[q.ID] = stored
	return nil
}

func (r *MemoryQuestionRepository) List(_ context.Context) ([]entity.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Question, 0, len(r.questions))
	for _, q := range r.questions {
		out = append(out, *copyQuestion(q))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryQuestionRepository) FindByID(_ context.Context, id string) (*entity.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyQuestion(q), nil
}

func (r *MemoryQuestionRepository) AddAnswer(_ context.Context, id string, answer entity.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.questions[id]
	if !ok {
		return ErrNotFound
	}
	q.Answers = append(q.Answers, answer)
	return nil
}

func (r *MemoryQuestionRepository) Like(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.questions[id]
	if !ok {
		return ErrNotFound
	}
	q.Likes++
	return nil
}

func copyQuestion(q *entity.Question) *entity.Question {
	c := *q
	if q.Answers != nil {
		c.Answers = append([]entity.Answer(nil), q.Answers...)
	}
	return &c
}
