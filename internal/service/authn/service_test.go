package authn

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brunovale/catalog-backend/internal/auth"
	"github.com/brunovale/catalog-backend/internal/config"
	"github.com/brunovale/catalog-backend/internal/domain"
)

type mockUserRepo struct {
	GetAuthByEmailFunc func(ctx context.Context, email string) (*domain.UserAuth, error)
}

func (m *mockUserRepo) GetAuthByEmail(ctx context.Context, email string) (*domain.UserAuth, error) {
	if m.GetAuthByEmailFunc != nil {
		return m.GetAuthByEmailFunc(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func newTestService(users *mockUserRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.AuthConfig{
		JWTIssuer:      "catalog-backend",
		AccessTokenTTL: time.Hour,
	}
	tokens := auth.NewJWTManager("test-secret-0123456789-0123456789-01", cfg.JWTIssuer, cfg.AccessTokenTTL)
	return NewService(logger, users, tokens, cfg)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin_HappyPath(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetAuthByEmailFunc: func(_ context.Context, email string) (*domain.UserAuth, error) {
			assert.Equal(t, "maria@example.com", email)
			return &domain.UserAuth{
				UserID:       42,
				Email:        email,
				PasswordHash: hashOf(t, "s3cret-pass"),
				Roles: []domain.Role{
					{ID: 1, Authority: domain.RoleOperator},
					{ID: 2, Authority: domain.RoleAdmin},
				},
			}, nil
		},
	}

	svc := newTestService(users)

	result, err := svc.Login(context.Background(), LoginInput{Email: "maria@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, time.Hour, result.ExpiresIn)

	identity, err := svc.ValidateToken(context.Background(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.True(t, identity.HasAuthority(domain.RoleAdmin))
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetAuthByEmailFunc: func(_ context.Context, email string) (*domain.UserAuth, error) {
			return &domain.UserAuth{UserID: 1, Email: email, PasswordHash: hashOf(t, "right")}, nil
		},
	}
	svc := newTestService(users)

	_, err := svc.Login(context.Background(), LoginInput{Email: "maria@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_MissingCredentials(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{})

	_, err := svc.ValidateToken(context.Background(), "junk")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
