// Package repomanager assembles the repositories over one backing store and
// owns its lifecycle.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/clients"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/users"
)

// MemoryDSN selects the in-process store.
const MemoryDSN = "memory://"

// Repositories is one consistent view of the store.
type Repositories struct {
	Users         users.Repository
	Clients       clients.Repository
	RefreshTokens refreshtokens.Repository
}

type RepositoryManager interface {
	Repositories() Repositories
	// WithTx runs fn against repositories bound to a single transaction.
	// Returning an error from fn discards its writes where the store
	// supports it.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}

// Open picks the store from the DSN: MemoryDSN for the in-process store,
// anything else is handed to the pgx driver.
func Open(ctx context.Context, dsn string) (RepositoryManager, error) {
	if strings.TrimSpace(dsn) == MemoryDSN {
		return NewMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresRepositoryManager(db), nil
}
