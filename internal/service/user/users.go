package user

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/reconcile"
	"github.com/brunovale/catalog-backend/pkg/ctxutil"
)

// List returns one page of user aggregates. Paging runs over bare user ids
// so the role join cannot fan a user across page slots; the aggregates are
// loaded for the page ids and reconciled back into page order.
func (s *Service) List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.User], error) {
	page.Normalize()

	var result *domain.Page[domain.User]
	err := s.tx.RunInReadTx(ctx, func(ctx context.Context) error {
		ids, err := s.users.ListIDs(ctx, page)
		if err != nil {
			return err
		}

		total, err := s.users.Count(ctx)
		if err != nil {
			return err
		}

		users, err := s.users.FindByIDsWithRoles(ctx, ids)
		if err != nil {
			return err
		}

		ordered, err := reconcile.ByID(ids, users, func(u domain.User) int64 { return u.ID })
		if err != nil {
			return err
		}

		result = domain.NewPage(ordered, page, total)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return result, nil
}

// Get returns a user aggregate by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetMe returns the aggregate of the authenticated user.
func (s *Service) GetMe(ctx context.Context) (*domain.User, error) {
	identity, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	return s.users.GetByID(ctx, identity.UserID)
}

// Create registers a new account. The password is bcrypt-hashed and the
// account always starts with exactly the operator role, whatever the caller
// sends.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	operator, err := s.roles.GetByAuthority(ctx, domain.RoleOperator)
	if err != nil {
		return nil, fmt.Errorf("resolve operator role: %w", err)
	}

	u := &domain.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hash),
	}

	var created *domain.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.users.Create(ctx, u, domain.RoleRefs([]int64{operator.ID}))
		if err != nil {
			return err
		}

		created, err = s.users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user created", "user_id", created.ID)
	return created, nil
}

// Update rewrites a user's profile and replaces its whole role set. A role
// id with no stored role surfaces as domain.ErrDanglingReference.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:        id,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
	}

	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Update(ctx, u, domain.RoleRefs(input.RoleIDs)); err != nil {
			return err
		}

		var err error
		updated, err = s.users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	return updated, nil
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// ListRoles returns every assignable role.
func (s *Service) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}
