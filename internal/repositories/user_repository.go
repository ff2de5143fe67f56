package repositories

import (
	"context"

	"github.com/streambox/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Delete(ctx context.Context, id string) error
}
