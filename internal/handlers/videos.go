package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/streambox/backend/internal/auth"
	"github.com/streambox/backend/internal/logging"
	"github.com/streambox/backend/internal/media"
	"github.com/streambox/backend/internal/models"
	"github.com/streambox/backend/internal/repositories"
)

// VideoHandler provides endpoints for listing, registering, and deleting a
// user's videos, plus the upload-authorization handshake.
type VideoHandler struct {
	Videos       VideoStore
	Media        MediaGateway
	Uploads      UploadSigner
	Presigner    UploadPresigner
	StorageQuota int64
	NowFunc      func() time.Time
}

// ListMine handles GET /videos/my. Alongside the caller's live videos it
// computes a storage-usage report; the report is derived on every read and
// never persisted.
func (h VideoHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		logger.Error("video list without claims on context")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication context missing"})
		return
	}

	videos, err := h.Videos.ListOwned(ctx, claims.ID)
	if err != nil {
		logger.Error("failed to list videos", "error", err, "userId", claims.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list videos"})
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	var used int64
	for _, video := range videos {
		used += video.Bytes
	}

	respondJSON(ctx, w, http.StatusOK, listVideosResponse{
		Count:  len(videos),
		Videos: videos,
		Storage: models.StorageReport{
			Used:       used,
			Total:      h.StorageQuota,
			VideoCount: len(videos),
		},
	})
}

// Save handles POST /video/save. Called after the client has finished a direct
// upload to the media host and reports the resulting metadata back.
func (h VideoHandler) Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		logger.Error("video save without claims on context")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication context missing"})
		return
	}

	var req saveVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video save payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	if req.PublicID == "" || req.SecureURL == "" {
		logger.Warn("video save missing identifiers", "userId", claims.ID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "Missing video data"})
		return
	}

	now := h.now()
	video := models.Video{
		ID:               uuid.NewString(),
		OwnerID:          claims.ID,
		OwnerEmail:       claims.Email,
		PublicID:         req.PublicID,
		SecureURL:        req.SecureURL,
		OriginalFilename: req.OriginalFilename,
		Format:           req.Format,
		Duration:         req.Duration,
		Bytes:            req.Bytes,
		Width:            req.Width,
		Height:           req.Height,
		Folder:           req.Folder,
		ThumbnailURL:     req.ThumbnailURL,
		Title:            req.Title,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("failed to save video", "error", err, "userId", claims.ID, "publicId", req.PublicID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save video"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, saveVideoResponse{
		Message: "Video saved successfully",
		Video:   video,
	})
}

// Delete handles DELETE /video/delete/{id}. The lookup is scoped to the
// caller's identity, so a video belonging to someone else reads as missing.
// The remote object is destroyed before the metadata row: a gateway failure
// aborts the whole operation and keeps the row, leaving a retryable state
// instead of metadata pointing at untracked media.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "video.delete")
	defer span.End()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		logger.Error("video delete without claims on context")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication context missing"})
		return
	}

	videoID := r.PathValue("id")
	if videoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "video id is required"})
		return
	}

	video, err := h.Videos.FindOwned(ctx, videoID, claims.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("video delete for unowned or missing video", "videoId", videoID, "userId", claims.ID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"message": "Video not found or unauthorized"})
			return
		}
		logger.Error("video delete lookup failed", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete video"})
		return
	}

	if err := h.Media.Destroy(ctx, video.PublicID); err != nil {
		logger.Error("gateway destroy failed", "error", err, "publicId", video.PublicID)
		respondJSON(ctx, w, http.StatusInternalServerError, deleteVideoResponse{
			Success: false,
			Message: "Failed to delete video",
		})
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		logger.Error("failed to delete video row", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, deleteVideoResponse{
			Success: false,
			Message: "Failed to delete video",
		})
		return
	}

	respondJSON(ctx, w, http.StatusOK, deleteVideoResponse{
		Success: true,
		Message: "Video deleted successfully",
	})
}

// Signature handles POST /cloudinary/signature. It returns a signed upload
// grant for the caller's folder; the gateway secret never leaves the server.
func (h VideoHandler) Signature(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		logger.Error("upload signature without claims on context")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication context missing"})
		return
	}

	var req signatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signature payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	grant, err := h.Uploads.SignUpload(media.UploadFolder(claims.Email), req.UseTransformation)
	if err != nil {
		logger.Error("failed to sign upload grant", "error", err, "userId", claims.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to sign upload"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, grant)
}

// Presign handles POST /uploads/presign, available when the object-store
// media backend is configured.
func (h VideoHandler) Presign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		logger.Error("upload presign without claims on context")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication context missing"})
		return
	}

	if h.Presigner == nil {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"message": "presigned uploads are not enabled"})
		return
	}

	upload, err := h.Presigner.PresignPut(ctx, claims.Email)
	if err != nil {
		logger.Error("failed to presign upload", "error", err, "userId", claims.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to presign upload"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, upload)
}

type listVideosResponse struct {
	Count   int                  `json:"count"`
	Videos  []models.Video       `json:"videos"`
	Storage models.StorageReport `json:"storage"`
}

type saveVideoRequest struct {
	PublicID         string  `json:"public_id"`
	SecureURL        string  `json:"secure_url"`
	OriginalFilename string  `json:"original_filename"`
	Format           string  `json:"format"`
	Duration         float64 `json:"duration"`
	Bytes            int64   `json:"bytes"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Folder           string  `json:"folder"`
	ThumbnailURL     string  `json:"thumbnail_url"`
	Title            string  `json:"title"`
}

type saveVideoResponse struct {
	Message string       `json:"message"`
	Video   models.Video `json:"video"`
}

type deleteVideoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type signatureRequest struct {
	UseTransformation bool `json:"useTransformation"`
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
