// Package user implements user account management. New accounts always
// start with the operator role; role changes happen through admin updates.
package user

import (
	"context"
	"log/slog"

	"github.com/brunovale/catalog-backend/internal/config"
	"github.com/brunovale/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type userRepo interface {
	ListIDs(ctx context.Context, page domain.PageRequest) ([]int64, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIDsWithRoles(ctx context.Context, ids []int64) ([]domain.User, error)
	Create(ctx context.Context, u *domain.User, roles []domain.RoleRef) (int64, error)
	Update(ctx context.Context, u *domain.User, roles []domain.RoleRef) error
	Delete(ctx context.Context, id int64) error
}

type roleRepo interface {
	List(ctx context.Context) ([]domain.Role, error)
	GetByAuthority(ctx context.Context, authority string) (*domain.Role, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInReadTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the user business logic.
type Service struct {
	log   *slog.Logger
	users userRepo
	roles roleRepo
	tx    txManager
	cfg   config.AuthConfig
}

// NewService creates a new User service.
func NewService(logger *slog.Logger, users userRepo, roles roleRepo, tx txManager, cfg config.AuthConfig) *Service {
	return &Service{
		log:   logger.With("service", "user"),
		users: users,
		roles: roles,
		tx:    tx,
		cfg:   cfg,
	}
}
