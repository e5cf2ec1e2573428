package recovery

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brunovale/catalog-backend/internal/config"
	"github.com/brunovale/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	GetIDByEmailFunc   func(ctx context.Context, email string) (int64, error)
	UpdatePasswordFunc func(ctx context.Context, email, passwordHash string) error
}

func (m *mockUserRepo) GetIDByEmail(ctx context.Context, email string) (int64, error) {
	if m.GetIDByEmailFunc != nil {
		return m.GetIDByEmailFunc(ctx, email)
	}
	return 0, domain.ErrNotFound
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, email, passwordHash)
	}
	return nil
}

type mockRecoveryRepo struct {
	CreateFunc    func(ctx context.Context, rec *domain.PasswordRecovery) (int64, error)
	FindValidFunc func(ctx context.Context, token string, now time.Time) (*domain.PasswordRecovery, error)
	MarkUsedFunc  func(ctx context.Context, id int64, usedAt time.Time) error
}

func (m *mockRecoveryRepo) Create(ctx context.Context, rec *domain.PasswordRecovery) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return 1, nil
}

func (m *mockRecoveryRepo) FindValid(ctx context.Context, token string, now time.Time) (*domain.PasswordRecovery, error) {
	if m.FindValidFunc != nil {
		return m.FindValidFunc(ctx, token, now)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecoveryRepo) MarkUsed(ctx context.Context, id int64, usedAt time.Time) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, id, usedAt)
	}
	return nil
}

type mockMail struct {
	SendFunc func(ctx context.Context, to, subject, body string) error
}

func (m *mockMail) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return nil
}

type mockTx struct{}

func (mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestService(users *mockUserRepo, recs *mockRecoveryRepo, mail *mockMail) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.RecoveryConfig{
		TokenTTL:   30 * time.Minute,
		RecoverURI: "http://localhost:3000/recover/",
	}
	authCfg := config.AuthConfig{PasswordHashCost: bcrypt.MinCost}
	svc := NewService(logger, users, recs, mail, mockTx{}, cfg, authCfg)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

// ---------------------------------------------------------------------------
// Issue
// ---------------------------------------------------------------------------

func TestIssue_StoresTokenAndSendsMail(t *testing.T) {
	t.Parallel()

	var stored *domain.PasswordRecovery
	var sentTo, sentBody string

	users := &mockUserRepo{
		GetIDByEmailFunc: func(_ context.Context, email string) (int64, error) {
			assert.Equal(t, "maria@example.com", email)
			return 7, nil
		},
	}
	recs := &mockRecoveryRepo{
		CreateFunc: func(_ context.Context, rec *domain.PasswordRecovery) (int64, error) {
			stored = rec
			return 1, nil
		},
	}
	mail := &mockMail{
		SendFunc: func(_ context.Context, to, _, body string) error {
			sentTo, sentBody = to, body
			return nil
		},
	}

	svc := newTestService(users, recs, mail)

	err := svc.Issue(context.Background(), "  maria@example.com ")
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, "maria@example.com", stored.Email)
	assert.NotEmpty(t, stored.Token)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC), stored.Expiration)

	assert.Equal(t, "maria@example.com", sentTo)
	assert.Contains(t, sentBody, "http://localhost:3000/recover/"+stored.Token)
	assert.Contains(t, sentBody, "30 minutes")
}

func TestIssue_MailFailureKeepsToken(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetIDByEmailFunc: func(context.Context, string) (int64, error) { return 7, nil },
	}
	created := false
	recs := &mockRecoveryRepo{
		CreateFunc: func(_ context.Context, _ *domain.PasswordRecovery) (int64, error) {
			created = true
			return 1, nil
		},
	}
	mail := &mockMail{
		SendFunc: func(context.Context, string, string, string) error {
			return assert.AnError
		},
	}

	svc := newTestService(users, recs, mail)

	err := svc.Issue(context.Background(), "maria@example.com")
	assert.NoError(t, err)
	assert.True(t, created)
}

func TestIssue_UnknownEmail(t *testing.T) {
	t.Parallel()

	mailed := false
	mail := &mockMail{SendFunc: func(context.Context, string, string, string) error {
		mailed = true
		return nil
	}}

	svc := newTestService(&mockUserRepo{}, &mockRecoveryRepo{}, mail)

	err := svc.Issue(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mailed)
}

func TestIssue_BlankEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{}, &mockRecoveryRepo{}, &mockMail{})

	err := svc.Issue(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---------------------------------------------------------------------------
// Reset
// ---------------------------------------------------------------------------

func TestReset_HappyPath(t *testing.T) {
	t.Parallel()

	var updatedEmail, updatedHash string
	var markedID int64

	users := &mockUserRepo{
		UpdatePasswordFunc: func(_ context.Context, email, hash string) error {
			updatedEmail, updatedHash = email, hash
			return nil
		},
	}
	recs := &mockRecoveryRepo{
		FindValidFunc: func(_ context.Context, token string, _ time.Time) (*domain.PasswordRecovery, error) {
			assert.Equal(t, "tok-123", token)
			return &domain.PasswordRecovery{ID: 9, Email: "maria@example.com", Token: token}, nil
		},
		MarkUsedFunc: func(_ context.Context, id int64, _ time.Time) error {
			markedID = id
			return nil
		},
	}

	svc := newTestService(users, recs, &mockMail{})

	err := svc.Reset(context.Background(), "tok-123", "fresh-password")
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", updatedEmail)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updatedHash), []byte("fresh-password")))
	assert.Equal(t, int64(9), markedID)
}

func TestReset_UnknownOrExpiredToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{}, &mockRecoveryRepo{}, &mockMail{})

	err := svc.Reset(context.Background(), "gone", "fresh-password")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestReset_TokenConsumedConcurrently(t *testing.T) {
	t.Parallel()

	recs := &mockRecoveryRepo{
		FindValidFunc: func(_ context.Context, token string, _ time.Time) (*domain.PasswordRecovery, error) {
			return &domain.PasswordRecovery{ID: 9, Email: "maria@example.com", Token: token}, nil
		},
		MarkUsedFunc: func(context.Context, int64, time.Time) error {
			return domain.ErrNotFound
		},
	}

	svc := newTestService(&mockUserRepo{}, recs, &mockMail{})

	err := svc.Reset(context.Background(), "tok-123", "fresh-password")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestReset_ShortPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{}, &mockRecoveryRepo{}, &mockMail{})

	err := svc.Reset(context.Background(), "tok-123", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "at least 8")
}

func TestReset_BlankToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{}, &mockRecoveryRepo{}, &mockMail{})

	err := svc.Reset(context.Background(), "  ", strings.Repeat("x", 12))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

