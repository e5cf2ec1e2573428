// Package recovery implements the password-recovery token lifecycle:
// issuing a token by email and redeeming it once for a password reset.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brunovale/catalog-backend/internal/config"
	"github.com/brunovale/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type userRepo interface {
	GetIDByEmail(ctx context.Context, email string) (int64, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type recoveryRepo interface {
	Create(ctx context.Context, rec *domain.PasswordRecovery) (int64, error)
	FindValid(ctx context.Context, token string, now time.Time) (*domain.PasswordRecovery, error)
	MarkUsed(ctx context.Context, id int64, usedAt time.Time) error
}

type mailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements password recovery.
type Service struct {
	log        *slog.Logger
	users      userRepo
	recoveries recoveryRepo
	mail       mailSender
	tx         txManager
	cfg        config.RecoveryConfig
	hashCost   int

	now func() time.Time
}

// NewService creates a new Recovery service.
func NewService(
	logger *slog.Logger,
	users userRepo,
	recoveries recoveryRepo,
	mail mailSender,
	tx txManager,
	cfg config.RecoveryConfig,
	authCfg config.AuthConfig,
) *Service {
	return &Service{
		log:        logger.With("service", "recovery"),
		users:      users,
		recoveries: recoveries,
		mail:       mail,
		tx:         tx,
		cfg:        cfg,
		hashCost:   authCfg.PasswordHashCost,
		now:        time.Now,
	}
}

// Issue creates a recovery token for the given email and mails a reset link.
// Unknown emails come back as domain.ErrNotFound: the endpoint deliberately
// confirms account existence so the caller gets immediate feedback.
func (s *Service) Issue(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.NewValidationError("email", "must not be blank")
	}

	if _, err := s.users.GetIDByEmail(ctx, email); err != nil {
		return fmt.Errorf("look up account: %w", err)
	}

	rec := &domain.PasswordRecovery{
		Email:      email,
		Token:      uuid.New().String(),
		Expiration: s.now().Add(s.cfg.TokenTTL),
	}

	if _, err := s.recoveries.Create(ctx, rec); err != nil {
		return fmt.Errorf("store recovery token: %w", err)
	}

	body := fmt.Sprintf(
		"How to reset your password? Access the link %s%s\n\nThe link is valid for %d minutes.",
		s.cfg.RecoverURI, rec.Token, int(s.cfg.TokenTTL.Minutes()),
	)
	// The token is already stored; a delivery failure must not void it.
	if err := s.mail.Send(ctx, email, "Password recovery", body); err != nil {
		s.log.ErrorContext(ctx, "recovery mail delivery failed", "email", email, "error", err)
	}

	s.log.InfoContext(ctx, "recovery token issued", "email", email)
	return nil
}

// Reset redeems a recovery token and replaces the account password. The
// token is consumed atomically with the password write, so a token can be
// used at most once even under concurrent requests.
func (s *Service) Reset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError("token", "must not be blank")
	}
	if len(newPassword) < minPasswordLen {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rec, err := s.recoveries.FindValid(ctx, token, s.now())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("recovery token: %w", domain.ErrInvalidToken)
			}
			return fmt.Errorf("find recovery token: %w", err)
		}

		if err := s.users.UpdatePassword(ctx, rec.Email, string(hash)); err != nil {
			return fmt.Errorf("update password: %w", err)
		}

		if err := s.recoveries.MarkUsed(ctx, rec.ID, s.now()); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("recovery token already consumed: %w", domain.ErrInvalidToken)
			}
			return fmt.Errorf("consume recovery token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password reset completed")
	return nil
}

const minPasswordLen = 8
