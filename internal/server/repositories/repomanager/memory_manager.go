package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/clients"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Its WithTx
// serializes callers but cannot roll back writes made before fn fails.
type MemoryRepositoryManager struct {
	txMu  sync.Mutex
	repos Repositories
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		repos: Repositories{
			Users:         users.NewMemoryRepository(),
			Clients:       clients.NewMemoryRepository(),
			RefreshTokens: refreshtokens.NewMemoryRepository(),
		},
	}
}

func (m *MemoryRepositoryManager) Repositories() Repositories {
	return m.repos
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m.repos)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
