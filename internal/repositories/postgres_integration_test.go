package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streambox/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)

	user := models.User{
		ID:        uuid.NewString(),
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "secret-hash",
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := models.User{
		ID:        uuid.NewString(),
		Username:  "alice-again",
		Email:     user.Email,
		Password:  "another-hash",
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate email, got %v", err)
	}

	fetched, err := repo.FindByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}

	if fetched.ID != user.ID || fetched.Email != user.Email || fetched.Password != user.Password {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}
	if fetched.Username != "alice" || fetched.Role != models.RoleUser {
		t.Fatalf("expected profile fields to persist, got %+v", fetched)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := repo.FindByEmail(ctx, user.Email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestPostgresVideoRepository_ListOwned(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "owner@example.com")
	other := createTestUser(t, userRepo, "other@example.com")

	baseTime := time.Now().UTC().Add(-time.Hour)
	older := createTestVideo(t, videoRepo, owner, "public-older", baseTime)
	newer := createTestVideo(t, videoRepo, owner, "public-newer", baseTime.Add(10*time.Minute))

	deleted := testVideo(owner, "public-deleted", baseTime.Add(20*time.Minute))
	deleted.IsDeleted = true
	if err := videoRepo.Create(ctx, deleted); err != nil {
		t.Fatalf("create soft-deleted video: %v", err)
	}
	createTestVideo(t, videoRepo, other, "public-foreign", baseTime.Add(30*time.Minute))

	owned, err := videoRepo.ListOwned(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list owned videos: %v", err)
	}

	if len(owned) != 2 {
		t.Fatalf("expected 2 live videos, got %d", len(owned))
	}
	if owned[0].ID != newer.ID || owned[1].ID != older.ID {
		t.Fatalf("expected newest-first ordering, got %s then %s", owned[0].ID, owned[1].ID)
	}
}

func TestPostgresVideoRepository_OwnershipScopedLookup(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "owner@example.com")
	intruder := createTestUser(t, userRepo, "intruder@example.com")

	video := createTestVideo(t, videoRepo, owner, "public-1", time.Now().UTC())

	fetched, err := videoRepo.FindOwned(ctx, video.ID, owner.Email)
	if err != nil {
		t.Fatalf("find owned video: %v", err)
	}
	if fetched.PublicID != "public-1" {
		t.Fatalf("unexpected video fetched: %+v", fetched)
	}

	if _, err := videoRepo.FindOwned(ctx, video.ID, intruder.Email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected foreign lookup to read as missing, got %v", err)
	}

	if err := videoRepo.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if _, err := videoRepo.FindOwned(ctx, video.ID, owner.Email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresVideoRepository_OwnerCascadeQueries(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "owner@example.com")
	other := createTestUser(t, userRepo, "other@example.com")

	baseTime := time.Now().UTC().Add(-time.Hour)
	createTestVideo(t, videoRepo, owner, "public-1", baseTime)

	deleted := testVideo(owner, "public-2", baseTime.Add(time.Minute))
	deleted.IsDeleted = true
	if err := videoRepo.Create(ctx, deleted); err != nil {
		t.Fatalf("create soft-deleted video: %v", err)
	}
	createTestVideo(t, videoRepo, other, "public-3", baseTime.Add(2*time.Minute))

	all, err := videoRepo.ListByOwnerEmail(ctx, owner.Email)
	if err != nil {
		t.Fatalf("list by owner email: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("cascade listing must include soft-deleted rows, got %d", len(all))
	}

	removed, err := videoRepo.DeleteByOwnerEmail(ctx, owner.Email)
	if err != nil {
		t.Fatalf("delete by owner email: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows removed, got %d", removed)
	}

	remaining, err := videoRepo.ListByOwnerEmail(ctx, other.Email)
	if err != nil {
		t.Fatalf("list remaining videos: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("other owners' rows must survive, got %d", len(remaining))
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, email string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  email,
		Email:     email,
		Password:  "password-hash",
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func testVideo(owner models.User, publicID string, createdAt time.Time) models.Video {
	return models.Video{
		ID:         uuid.NewString(),
		OwnerID:    owner.ID,
		OwnerEmail: owner.Email,
		PublicID:   publicID,
		SecureURL:  fmt.Sprintf("https://media.example.com/%s.mp4", publicID),
		Bytes:      1024,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, owner models.User, publicID string, createdAt time.Time) models.Video {
	t.Helper()
	video := testVideo(owner, publicID, createdAt)
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
