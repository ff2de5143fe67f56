package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/streambox/backend/internal/models"
)

// ErrInvalidToken indicates a bearer token whose signature or lifetime could
// not be verified.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity payload embedded in every issued bearer token. It is
// reconstructed from the token signature on each request and never persisted.
type Claims struct {
	jwt.RegisteredClaims
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// TokenIssuer signs and verifies the bearer tokens that authenticate API calls.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer constructs an issuer signing HS256 tokens with the given
// secret that expire after the provided duration.
func NewTokenIssuer(secret []byte, expiry time.Duration) *TokenIssuer {
	if len(secret) == 0 {
		panic("auth: token secret must not be empty")
	}
	return &TokenIssuer{secret: secret, expiry: expiry}
}

// Issue creates a signed token embedding the user's identity claims.
func (t *TokenIssuer) Issue(user models.User) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the token signature and lifetime, returning the embedded
// claims on success. All verification failures collapse into ErrInvalidToken;
// callers must not leak the distinction to clients.
func (t *TokenIssuer) Verify(tokenString string) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", tok.Method.Alg())
		}
		return t.secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
