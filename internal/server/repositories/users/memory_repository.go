package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
)

// MemoryRepository keeps users in process memory. It backs the memory://
// store and the service tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]models.User
	byHandle map[string]string
	byEmail  map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]models.User),
		byHandle: make(map[string]string),
		byEmail:  make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byHandle[user.IdentityHandle]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.byID[user.ID] = *user
	r.byHandle[user.IdentityHandle] = user.ID
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(userID)
}

func (r *MemoryRepository) GetByHandle(_ context.Context, handle string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.byHandle[handle])
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.byEmail[email])
}

func (r *MemoryRepository) get(userID string) (*models.User, error) {
	u, ok := r.byID[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}
