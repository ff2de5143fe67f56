package repositories

import (
	"context"

	"github.com/streambox/backend/internal/models"
)

// VideoRepository exposes data access for per-user video metadata. Ownership
// checks are folded into the lookups: callers pass the identity from their
// token claims and only matching rows are visible.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	ListOwned(ctx context.Context, ownerID string) ([]models.Video, error)
	FindOwned(ctx context.Context, id, ownerEmail string) (models.Video, error)
	Delete(ctx context.Context, id string) error
	ListByOwnerEmail(ctx context.Context, ownerEmail string) ([]models.Video, error)
	DeleteByOwnerEmail(ctx context.Context, ownerEmail string) (int64, error)
}
