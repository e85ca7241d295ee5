package clients

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
)

// MemoryRepository keeps the registry in process memory. Records are copied
// on the way in and out so callers never share slices with the store.
type MemoryRepository struct {
	mu      sync.Mutex
	clients map[string]*models.Client
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{clients: make(map[string]*models.Client)}
}

func clone(c *models.Client) *models.Client {
	cp := *c
	cp.IPHistory = slices.Clone(c.IPHistory)
	return &cp
}

func (r *MemoryRepository) Get(_ context.Context, clientID string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[clientID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(c), nil
}

func (r *MemoryRepository) Create(_ context.Context, client *models.Client) (*models.Client, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.clients[client.ClientID]; ok {
		return clone(existing), false, nil
	}
	r.clients[client.ClientID] = clone(client)
	return clone(client), true, nil
}

func (r *MemoryRepository) RecordActivity(_ context.Context, clientID string, sighting models.IPSighting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[clientID]
	if !ok {
		return common.ErrorNotFound
	}
	c.IPLastSeen = sighting.IP
	c.LastSeenAt = sighting.SeenAt
	c.IPHistory = c.IPHistory.Append(sighting)
	return nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, clientID string, status models.ClientStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[clientID]
	if !ok {
		return common.ErrorNotFound
	}
	c.Status = status
	return nil
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Client
	for _, c := range r.clients {
		if userID == "" || c.UserID == userID {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ClientID < out[j].ClientID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
