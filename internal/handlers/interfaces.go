package handlers

import (
	"context"

	"github.com/streambox/backend/internal/media"
	"github.com/streambox/backend/internal/models"
)

// UserStore captures the persistence operations required by the account handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// VideoStore captures persistence for video metadata scoped to an owner.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	ListOwned(ctx context.Context, ownerID string) ([]models.Video, error)
	FindOwned(ctx context.Context, id, ownerEmail string) (models.Video, error)
	Delete(ctx context.Context, id string) error
	ListByOwnerEmail(ctx context.Context, ownerEmail string) ([]models.Video, error)
	DeleteByOwnerEmail(ctx context.Context, ownerEmail string) (int64, error)
}

// TokenIssuer signs bearer tokens embedding a user's identity claims.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
}

// MediaGateway removes objects from the remote media host.
type MediaGateway interface {
	Destroy(ctx context.Context, publicID string) error
}

// UploadSigner produces signed, time-boxed upload grants.
type UploadSigner interface {
	SignUpload(folder string, withTransformation bool) (media.UploadGrant, error)
}

// UploadPresigner issues presigned PUT URLs when the object-store backend is
// in use.
type UploadPresigner interface {
	PresignPut(ctx context.Context, ownerEmail string) (media.PresignedUpload, error)
}
