package app

import (
	"context"
	"fmt"

	"github.com/streambox/backend/internal/auth"
	"github.com/streambox/backend/internal/config"
	"github.com/streambox/backend/internal/db"
	"github.com/streambox/backend/internal/handlers"
	"github.com/streambox/backend/internal/media"
	"github.com/streambox/backend/internal/middleware"
	"github.com/streambox/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExpiry)
	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateBurst, cfg.AuthRateWindow*5)

	deps := handlers.Dependencies{
		Users:        repositories.NewPostgresUserRepository(pool),
		Videos:       repositories.NewPostgresVideoRepository(pool),
		Tokens:       tokens,
		Verifier:     tokens,
		AuthLimiter:  limiter,
		StorageQuota: cfg.StorageQuotaBytes,
	}

	switch cfg.MediaBackend {
	case config.MediaBackendCloudinary:
		gateway, err := media.NewCloudinaryGateway(cfg.Cloudinary)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure cloudinary gateway: %w", err)
		}
		deps.Media = gateway
		deps.Uploads = gateway
	case config.MediaBackendS3:
		gateway, err := media.NewS3Gateway(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure s3 gateway: %w", err)
		}
		deps.Media = gateway
		deps.Presigner = gateway
	default:
		return handlers.Dependencies{}, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}

	return deps, nil
}
