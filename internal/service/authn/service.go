// Package authn implements credential login and bearer-token validation.
package authn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/brunovale/catalog-backend/internal/auth"
	"github.com/brunovale/catalog-backend/internal/config"
	"github.com/brunovale/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type userRepo interface {
	GetAuthByEmail(ctx context.Context, email string) (*domain.UserAuth, error)
}

type tokenManager interface {
	GenerateAccessToken(userID int64, authorities []string) (string, error)
	ValidateAccessToken(tokenString string) (auth.Identity, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements authentication.
type Service struct {
	log    *slog.Logger
	users  userRepo
	tokens tokenManager
	cfg    config.AuthConfig
}

// NewService creates a new Authn service.
func NewService(logger *slog.Logger, users userRepo, tokens tokenManager, cfg config.AuthConfig) *Service {
	return &Service{
		log:    logger.With("service", "authn"),
		users:  users,
		tokens: tokens,
		cfg:    cfg,
	}
}

// LoginInput holds the credentials for a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a successful login: a bearer token and its lifetime.
type LoginResult struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// Login verifies the credentials against the stored bcrypt hash and issues
// an access token. Unknown email and wrong password both come back as
// domain.ErrUnauthorized so a caller cannot probe which emails exist.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("missing credentials: %w", domain.ErrUnauthorized)
	}

	userAuth, err := s.users.GetAuthByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userAuth.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.GenerateAccessToken(userAuth.UserID, userAuth.Authorities())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in", "user_id", userAuth.UserID)

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   s.cfg.AccessTokenTTL,
	}, nil
}

// ValidateToken resolves a bearer token to the identity it carries.
func (s *Service) ValidateToken(ctx context.Context, token string) (auth.Identity, error) {
	identity, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("validate token: %w", errors.Join(err, domain.ErrUnauthorized))
	}
	return identity, nil
}
