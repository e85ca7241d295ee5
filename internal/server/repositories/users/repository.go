// Package users is the read side of the user store used by authentication,
// plus Create for provisioning tools.
package users

import (
	"context"

	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
)

// Repository looks users up by their unique keys. Lookups return
// common.ErrorNotFound when nothing matches; Create returns
// common.ErrorAlreadyExists when the id, handle or email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByHandle(ctx context.Context, handle string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
