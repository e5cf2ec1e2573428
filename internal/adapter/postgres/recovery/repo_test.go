package recovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres/recovery"
	"github.com/brunovale/catalog-backend/internal/adapter/postgres/testhelper"
	"github.com/brunovale/catalog-backend/internal/domain"
)

func newRepo(t *testing.T) (*recovery.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return recovery.New(pool), pool
}

func TestRepo_FindValid_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	email := "recover-" + testhelper.UniqueSuffix() + "@example.com"
	seeded := testhelper.SeedRecovery(t, pool, email, now.Add(30*time.Minute))

	got, err := repo.FindValid(ctx, seeded.Token, now)
	if err != nil {
		t.Fatalf("FindValid: unexpected error: %v", err)
	}

	if got.Email != email {
		t.Errorf("Email mismatch: got %q, want %q", got.Email, email)
	}
	if got.UsedAt != nil {
		t.Errorf("UsedAt should be nil for a fresh token, got %v", *got.UsedAt)
	}
}

func TestRepo_FindValid_Expired(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	email := "expired-" + testhelper.UniqueSuffix() + "@example.com"
	seeded := testhelper.SeedRecovery(t, pool, email, now.Add(-time.Minute))

	_, err := repo.FindValid(ctx, seeded.Token, now)
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_FindValid_Consumed(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	email := "used-" + testhelper.UniqueSuffix() + "@example.com"
	seeded := testhelper.SeedRecovery(t, pool, email, now.Add(30*time.Minute))

	if err := repo.MarkUsed(ctx, seeded.ID, now); err != nil {
		t.Fatalf("MarkUsed: unexpected error: %v", err)
	}

	_, err := repo.FindValid(ctx, seeded.Token, now)
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_MarkUsed_SecondCallFails(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	email := "twice-" + testhelper.UniqueSuffix() + "@example.com"
	seeded := testhelper.SeedRecovery(t, pool, email, now.Add(30*time.Minute))

	if err := repo.MarkUsed(ctx, seeded.ID, now); err != nil {
		t.Fatalf("first MarkUsed: unexpected error: %v", err)
	}

	err := repo.MarkUsed(ctx, seeded.ID, now)
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_Create_DuplicateToken(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	email := "dup-" + testhelper.UniqueSuffix() + "@example.com"
	seeded := testhelper.SeedRecovery(t, pool, email, now.Add(30*time.Minute))

	dup := domain.PasswordRecovery{
		Email:      email,
		Token:      seeded.Token,
		Expiration: now.Add(30 * time.Minute),
	}
	_, err := repo.Create(ctx, &dup)
	assertIsDomainError(t, err, domain.ErrAlreadyExists)
}

func TestRepo_DeleteStale(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	email := "stale-" + testhelper.UniqueSuffix() + "@example.com"
	expired := testhelper.SeedRecovery(t, pool, email, now.Add(-time.Hour))
	live := testhelper.SeedRecovery(t, pool, email, now.Add(time.Hour))

	deleted, err := repo.DeleteStale(ctx, now)
	if err != nil {
		t.Fatalf("DeleteStale: unexpected error: %v", err)
	}
	if deleted < 1 {
		t.Errorf("DeleteStale: got %d deletions, want at least 1", deleted)
	}

	_, err = repo.FindValid(ctx, expired.Token, now)
	assertIsDomainError(t, err, domain.ErrNotFound)

	if _, err := repo.FindValid(ctx, live.Token, now); err != nil {
		t.Errorf("live token should survive cleanup, got: %v", err)
	}
}

func assertIsDomainError(t *testing.T, err error, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got: %v", target, err)
	}
}
