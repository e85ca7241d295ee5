// Package clients stores the device registry: one record per enrolled
// client_id, bound to a single user for life.
package clients

import (
	"context"

	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
)

// Repository is the client registry storage.
//
// Create is atomic on client_id: when two callers race to enroll the same
// device exactly one of them gets created == true, and both receive the
// stored record. RecordActivity and SetStatus return common.ErrorNotFound for
// an unknown client_id.
type Repository interface {
	Get(ctx context.Context, clientID string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) (stored *models.Client, created bool, err error)
	RecordActivity(ctx context.Context, clientID string, sighting models.IPSighting) error
	SetStatus(ctx context.Context, clientID string, status models.ClientStatus) error
	// List returns clients ordered by creation time. An empty userID lists
	// every client.
	List(ctx context.Context, userID string) ([]*models.Client, error)
}
