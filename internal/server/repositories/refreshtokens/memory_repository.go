package refreshtokens

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.RefreshToken)}
}

func (r *MemoryRepository) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.TokenHash]; ok {
		return common.ErrorAlreadyExists
	}
	t := *token
	t.Scopes = slices.Clone(token.Scopes)
	r.tokens[t.TokenHash] = t
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t.Scopes = slices.Clone(t.Scopes)
	return &t, nil
}

func (r *MemoryRepository) Delete(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tokens[tokenHash]
	delete(r.tokens, tokenHash)
	return ok, nil
}

func (r *MemoryRepository) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for h, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, h)
			n++
		}
	}
	return n, nil
}
