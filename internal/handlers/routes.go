package handlers

import (
	"net/http"

	"github.com/streambox/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Every
// protected route passes through the access guard before reaching its handler.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	account := AccountHandler{
		Users:   deps.Users,
		Videos:  deps.Videos,
		Media:   deps.Media,
		Tokens:  deps.Tokens,
		Limiter: deps.AuthLimiter,
	}
	videos := VideoHandler{
		Videos:       deps.Videos,
		Media:        deps.Media,
		Uploads:      deps.Uploads,
		Presigner:    deps.Presigner,
		StorageQuota: deps.StorageQuota,
	}

	guard := middleware.RequireAuth(deps.Verifier)

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/create/user", account.Create)
	mux.HandleFunc("/login/user", account.Login)
	mux.Handle("/delete/user", guard(http.HandlerFunc(account.Delete)))
	mux.Handle("/videos/my", guard(http.HandlerFunc(videos.ListMine)))
	mux.Handle("/video/save", guard(http.HandlerFunc(videos.Save)))
	mux.Handle("/video/delete/{id}", guard(http.HandlerFunc(videos.Delete)))
	if deps.Uploads != nil {
		mux.Handle("/cloudinary/signature", guard(http.HandlerFunc(videos.Signature)))
	}
	if deps.Presigner != nil {
		mux.Handle("/uploads/presign", guard(http.HandlerFunc(videos.Presign)))
	}
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users        UserStore
	Videos       VideoStore
	Media        MediaGateway
	Tokens       TokenIssuer
	Verifier     middleware.TokenVerifier
	Uploads      UploadSigner
	Presigner    UploadPresigner
	AuthLimiter  RateLimiter
	StorageQuota int64
}
