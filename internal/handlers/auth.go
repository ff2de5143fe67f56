package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/streambox/backend/internal/auth"
	"github.com/streambox/backend/internal/logging"
	"github.com/streambox/backend/internal/models"
	"github.com/streambox/backend/internal/repositories"
)

// AccountHandler implements user registration, login, and account deletion.
type AccountHandler struct {
	Users   UserStore
	Videos  VideoStore
	Media   MediaGateway
	Tokens  TokenIssuer
	Limiter RateLimiter
	NowFunc func() time.Time
}

// Create handles POST /create/user requests.
func (h AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "signup") {
		logger.Warn("signup rate limited", "remote_addr", r.RemoteAddr)
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"message": "too many requests"})
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		logger.Warn("signup missing credentials", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "email and password are required"})
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("signup invalid email", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "invalid email address"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("signup failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to secure password"})
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("signup conflict", "email", req.Email)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
			return
		}
		logger.Error("signup failed to create user", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, createUserResponse{
		Message: "User created successfully",
		User: createdUser{
			ID:    user.ID,
			Name:  user.Username,
			Email: user.Email,
		},
	})
}

// Login handles POST /login/user requests. Unknown email and wrong password
// intentionally produce the same response, so callers cannot enumerate
// accounts.
func (h AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		logger.Warn("login rate limited", "remote_addr", r.RemoteAddr)
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"message": "too many requests"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		logger.Warn("login missing credentials", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "Email and password required"})
		return
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Error("login user lookup failed", "error", err, "email", req.Email)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify credentials"})
			return
		}
		logger.Warn("login unknown email", "email", req.Email)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		logger.Error("failed to issue token", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// Delete handles DELETE /delete/user requests. It cascades over both backends:
// every remote object is destroyed best-effort, then all metadata rows and the
// user row are removed. A single broken media reference must not block account
// removal, so per-item gateway failures are recorded and the loop continues.
func (h AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "account.delete")
	defer span.End()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		logger.Error("account delete without claims on context")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication context missing"})
		return
	}

	videos, err := h.Videos.ListByOwnerEmail(ctx, claims.Email)
	if err != nil {
		logger.Error("account delete failed to list videos", "error", err, "userId", claims.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete account"})
		return
	}

	outcomes := h.destroyAll(ctx, videos)
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			logger.Error("failed to delete remote media object",
				"publicId", outcome.PublicID, "error", outcome.Err)
		}
	}

	if _, err := h.Videos.DeleteByOwnerEmail(ctx, claims.Email); err != nil {
		logger.Error("account delete failed to remove video rows", "error", err, "userId", claims.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete account"})
		return
	}

	if err := h.Users.Delete(ctx, claims.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("account delete for missing user", "userId", claims.ID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		logger.Error("account delete failed to remove user row", "error", err, "userId", claims.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete account"})
		return
	}

	logger.Info("account deleted", "userId", claims.ID, "videoCount", len(videos))
	respondJSON(ctx, w, http.StatusOK, deleteAccountResponse{
		Message:            "User account and all associated data deleted successfully",
		DeletedVideosCount: len(videos),
	})
}

// destroyOutcome records the per-item result of a batch gateway cleanup.
type destroyOutcome struct {
	PublicID string
	Err      error
}

// destroyAll attempts gateway deletion for every video sequentially. Remote
// calls are awaited one at a time to avoid rate-limit bursts against the host.
func (h AccountHandler) destroyAll(ctx context.Context, videos []models.Video) []destroyOutcome {
	outcomes := make([]destroyOutcome, 0, len(videos))
	for _, video := range videos {
		outcomes = append(outcomes, destroyOutcome{
			PublicID: video.PublicID,
			Err:      h.Media.Destroy(ctx, video.PublicID),
		})
	}
	return outcomes
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type createdUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createUserResponse struct {
	Message string      `json:"message"`
	User    createdUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type deleteAccountResponse struct {
	Message            string `json:"message"`
	DeletedVideosCount int    `json:"deletedVideosCount"`
}

func (h AccountHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
