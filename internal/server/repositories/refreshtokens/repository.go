// Package refreshtokens stores hashed refresh tokens. The raw token value
// never reaches this layer.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	// Find returns common.ErrorNotFound when no token has the given hash.
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	// Delete reports whether a token was removed.
	Delete(ctx context.Context, tokenHash string) (bool, error)
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}
