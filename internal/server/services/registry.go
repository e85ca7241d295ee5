package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
)

// Registry owns device records. Device status is always read from the
// store; nothing is cached.
type Registry struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

// NewRegistry uses time.Now when now is nil.
func NewRegistry(m repomanager.RepositoryManager, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{repomanager: m, now: now}
}

// Get returns the client or common.ErrorNotFound.
func (r *Registry) Get(ctx context.Context, clientID string) (*models.Client, error) {
	return r.repomanager.Repositories().Clients.Get(ctx, clientID)
}

// IsActive is false for unknown and revoked clients alike.
func (r *Registry) IsActive(ctx context.Context, clientID string) (bool, error) {
	c, err := r.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.IsActive(), nil
}

// Create enrolls client or, when another request enrolled the same
// client_id first, returns that record with created == false.
func (r *Registry) Create(ctx context.Context, client *models.Client) (*models.Client, bool, error) {
	return r.repomanager.Repositories().Clients.Create(ctx, client)
}

// Enroll builds a fresh active record for the device as seen now and
// passes it to Create.
func (r *Registry) Enroll(ctx context.Context, clientID, userID, publicKey string, app models.AppMetadata, ip string) (*models.Client, bool, error) {
	return r.Create(ctx, models.NewClient(clientID, userID, publicKey, app, ip, r.now().UTC()))
}

// RecordActivity stamps the client as seen now from ip.
func (r *Registry) RecordActivity(ctx context.Context, clientID, ip string) error {
	return r.repomanager.Repositories().Clients.RecordActivity(ctx, clientID, r.sighting(ip))
}

func (r *Registry) sighting(ip string) models.IPSighting {
	return models.IPSighting{IP: ip, SeenAt: r.now().UTC()}
}

// Revoke marks the client revoked. Revoking twice is not an error.
func (r *Registry) Revoke(ctx context.Context, clientID string) error {
	return r.repomanager.Repositories().Clients.SetStatus(ctx, clientID, models.ClientStatusRevoked)
}

func (r *Registry) List(ctx context.Context, userID string) ([]*models.Client, error) {
	return r.repomanager.Repositories().Clients.List(ctx, userID)
}
