package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streambox/backend/internal/auth"
	"github.com/streambox/backend/internal/models"
)

func guardedEcho(t *testing.T, verifier TokenVerifier) (http.Handler, *bool) {
	t.Helper()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("expected claims on request context")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"email": claims.Email})
	})

	return RequireAuth(verifier)(next), &called
}

func TestRequireAuthMissingHeader(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour)
	handler, called := guardedEcho(t, issuer)

	req := httptest.NewRequest(http.MethodGet, "/videos/my", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if *called {
		t.Fatal("handler must not run without a token")
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["message"] != "no token provided" {
		t.Fatalf("unexpected message %q", body["message"])
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour)
	handler, called := guardedEcho(t, issuer)

	for _, header := range []string{"Bearer", "Bearer ", "justonetoken"} {
		req := httptest.NewRequest(http.MethodGet, "/videos/my", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected status %d got %d", header, http.StatusUnauthorized, rec.Code)
		}
	}

	if *called {
		t.Fatal("handler must not run with a malformed header")
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour)
	handler, called := guardedEcho(t, issuer)

	other := auth.NewTokenIssuer([]byte("other-secret"), time.Hour)
	token, err := other.Issue(models.User{ID: "user-1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/videos/my", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if *called {
		t.Fatal("handler must not run with an invalid token")
	}
}

func TestRequireAuthAttachesClaims(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour)
	handler, called := guardedEcho(t, issuer)

	token, err := issuer.Issue(models.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/videos/my", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if !*called {
		t.Fatal("expected handler to run")
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["email"] != "alice@example.com" {
		t.Fatalf("expected claims email to round-trip, got %q", body["email"])
	}
}
