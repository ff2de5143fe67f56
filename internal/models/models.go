package models

import "time"

// User represents an account within the StreamBox platform. Password holds the
// bcrypt hash and must never be serialized back to callers.
type User struct {
	ID            string
	Username      string
	Email         string
	Password      string
	UserImage     string
	EmailVerified bool
	Role          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	UserImage string `json:"user_image,omitempty"`
	Role      string `json:"role"`
}

// Public strips the credential and bookkeeping fields from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		UserImage: u.UserImage,
		Role:      u.Role,
	}
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Video stores the metadata a client reports back after uploading a media
// object to the remote host. OwnerEmail is denormalized alongside OwnerID so
// ownership checks can filter on the identity carried in token claims.
type Video struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"userId"`
	OwnerEmail       string    `json:"userEmail"`
	PublicID         string    `json:"public_id"`
	SecureURL        string    `json:"secure_url"`
	OriginalFilename string    `json:"original_filename,omitempty"`
	Format           string    `json:"format,omitempty"`
	Duration         float64   `json:"duration,omitempty"`
	Bytes            int64     `json:"bytes,omitempty"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	Folder           string    `json:"folder,omitempty"`
	ThumbnailURL     string    `json:"thumbnail_url,omitempty"`
	Title            string    `json:"title,omitempty"`
	IsDeleted        bool      `json:"isDeleted"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// StorageReport summarizes how much of the per-account media quota is in use.
// It is derived from the owner's live video rows and never persisted.
type StorageReport struct {
	Used       int64 `json:"used"`
	Total      int64 `json:"total"`
	VideoCount int   `json:"videoCount"`
}
