package user

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brunovale/catalog-backend/internal/auth"
	"github.com/brunovale/catalog-backend/internal/config"
	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockUserRepo struct {
	ListIDsFunc            func(ctx context.Context, page domain.PageRequest) ([]int64, error)
	CountFunc              func(ctx context.Context) (int64, error)
	GetByIDFunc            func(ctx context.Context, id int64) (*domain.User, error)
	FindByIDsWithRolesFunc func(ctx context.Context, ids []int64) ([]domain.User, error)
	CreateFunc             func(ctx context.Context, u *domain.User, roles []domain.RoleRef) (int64, error)
	UpdateFunc             func(ctx context.Context, u *domain.User, roles []domain.RoleRef) error
	DeleteFunc             func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) ListIDs(ctx context.Context, page domain.PageRequest) ([]int64, error) {
	if m.ListIDsFunc != nil {
		return m.ListIDsFunc(ctx, page)
	}
	return []int64{}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) FindByIDsWithRoles(ctx context.Context, ids []int64) ([]domain.User, error) {
	if m.FindByIDsWithRolesFunc != nil {
		return m.FindByIDsWithRolesFunc(ctx, ids)
	}
	return []domain.User{}, nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User, roles []domain.RoleRef) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u, roles)
	}
	return 1, nil
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User, roles []domain.RoleRef) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u, roles)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockRoleRepo struct {
	ListFunc           func(ctx context.Context) ([]domain.Role, error)
	GetByAuthorityFunc func(ctx context.Context, authority string) (*domain.Role, error)
}

func (m *mockRoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Role{{ID: 1, Authority: domain.RoleOperator}, {ID: 2, Authority: domain.RoleAdmin}}, nil
}

func (m *mockRoleRepo) GetByAuthority(ctx context.Context, authority string) (*domain.Role, error) {
	if m.GetByAuthorityFunc != nil {
		return m.GetByAuthorityFunc(ctx, authority)
	}
	return &domain.Role{ID: 1, Authority: authority}, nil
}

type mockTx struct{}

func (mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error     { return fn(ctx) }
func (mockTx) RunInReadTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func newTestService(users *mockUserRepo, roles *mockRoleRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.AuthConfig{PasswordHashCost: bcrypt.MinCost}
	return NewService(logger, users, roles, mockTx{}, cfg)
}

func validCreateInput() CreateInput {
	return CreateInput{
		FirstName: "Maria",
		LastName:  "Silva",
		Email:     "maria@example.com",
		Password:  "s3cret-pass",
	}
}

// ===========================================================================
// List
// ===========================================================================

func TestList_ReordersAggregates(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		ListIDsFunc: func(_ context.Context, _ domain.PageRequest) ([]int64, error) {
			return []int64{3, 1, 2}, nil
		},
		CountFunc: func(_ context.Context) (int64, error) { return 3, nil },
		FindByIDsWithRolesFunc: func(_ context.Context, ids []int64) ([]domain.User, error) {
			require.Equal(t, []int64{3, 1, 2}, ids)
			return []domain.User{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
	}

	svc := newTestService(users, &mockRoleRepo{})

	page, err := svc.List(context.Background(), domain.PageRequest{Size: 10})
	require.NoError(t, err)

	require.Len(t, page.Content, 3)
	assert.Equal(t, int64(3), page.Content[0].ID)
	assert.Equal(t, int64(1), page.Content[1].ID)
	assert.Equal(t, int64(2), page.Content[2].ID)
}

func TestList_MissingAggregateFails(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		ListIDsFunc: func(_ context.Context, _ domain.PageRequest) ([]int64, error) {
			return []int64{1, 2}, nil
		},
		FindByIDsWithRolesFunc: func(_ context.Context, _ []int64) ([]domain.User, error) {
			return []domain.User{{ID: 1}}, nil
		},
	}

	svc := newTestService(users, &mockRoleRepo{})

	_, err := svc.List(context.Background(), domain.PageRequest{Size: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ===========================================================================
// GetMe
// ===========================================================================

func TestGetMe_UsesContextIdentity(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetByIDFunc: func(_ context.Context, id int64) (*domain.User, error) {
			assert.Equal(t, int64(42), id)
			return &domain.User{ID: id, Email: "me@example.com"}, nil
		},
	}
	svc := newTestService(users, &mockRoleRepo{})

	ctx := ctxutil.WithIdentity(context.Background(), auth.Identity{UserID: 42})

	got, err := svc.GetMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", got.Email)
}

func TestGetMe_NoIdentity(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{}, &mockRoleRepo{})

	_, err := svc.GetMe(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ===========================================================================
// Create
// ===========================================================================

func TestCreate_HashesPasswordAndForcesOperator(t *testing.T) {
	t.Parallel()

	var stored *domain.User
	var storedRoles []domain.RoleRef
	users := &mockUserRepo{
		CreateFunc: func(_ context.Context, u *domain.User, roles []domain.RoleRef) (int64, error) {
			stored = u
			storedRoles = roles
			return 5, nil
		},
		GetByIDFunc: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Email: "maria@example.com", Roles: []domain.Role{{ID: 7, Authority: domain.RoleOperator}}}, nil
		},
	}
	roles := &mockRoleRepo{
		GetByAuthorityFunc: func(_ context.Context, authority string) (*domain.Role, error) {
			assert.Equal(t, domain.RoleOperator, authority)
			return &domain.Role{ID: 7, Authority: authority}, nil
		},
	}

	svc := newTestService(users, roles)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, int64(5), created.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
	assert.Equal(t, []domain.RoleRef{{ID: 7}}, storedRoles)
}

func TestCreate_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty first name", func(i *CreateInput) { i.FirstName = " " }},
		{"empty last name", func(i *CreateInput) { i.LastName = "" }},
		{"empty email", func(i *CreateInput) { i.Email = "" }},
		{"bad email", func(i *CreateInput) { i.Email = "not-an-email" }},
		{"short password", func(i *CreateInput) { i.Password = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestService(&mockUserRepo{}, &mockRoleRepo{})

			input := validCreateInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		CreateFunc: func(_ context.Context, _ *domain.User, _ []domain.RoleRef) (int64, error) {
			return 0, domain.ErrAlreadyExists
		},
	}
	svc := newTestService(users, &mockRoleRepo{})

	_, err := svc.Create(context.Background(), validCreateInput())
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

// ===========================================================================
// Update / Delete
// ===========================================================================

func TestUpdate_ReplacesRoleSet(t *testing.T) {
	t.Parallel()

	var gotRoles []domain.RoleRef
	users := &mockUserRepo{
		UpdateFunc: func(_ context.Context, u *domain.User, roles []domain.RoleRef) error {
			gotRoles = roles
			assert.Equal(t, int64(5), u.ID)
			return nil
		},
		GetByIDFunc: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}
	svc := newTestService(users, &mockRoleRepo{})

	input := UpdateInput{
		FirstName: "Maria",
		LastName:  "Souza",
		Email:     "maria@example.com",
		RoleIDs:   []int64{1, 2, 2},
	}
	_, err := svc.Update(context.Background(), 5, input)
	require.NoError(t, err)

	assert.Equal(t, []domain.RoleRef{{ID: 1}, {ID: 2}}, gotRoles)
}

func TestUpdate_RequiresRoles(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{}, &mockRoleRepo{})

	input := UpdateInput{FirstName: "Maria", LastName: "Souza", Email: "maria@example.com"}
	_, err := svc.Update(context.Background(), 5, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdate_DanglingRole(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		UpdateFunc: func(_ context.Context, _ *domain.User, _ []domain.RoleRef) error {
			return domain.ErrDanglingReference
		},
	}
	svc := newTestService(users, &mockRoleRepo{})

	input := UpdateInput{FirstName: "Maria", LastName: "Souza", Email: "maria@example.com", RoleIDs: []int64{999}}
	_, err := svc.Update(context.Background(), 5, input)
	assert.ErrorIs(t, err, domain.ErrDanglingReference)
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		DeleteFunc: func(_ context.Context, _ int64) error { return domain.ErrNotFound },
	}
	svc := newTestService(users, &mockRoleRepo{})

	err := svc.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRoles(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepo{}, &mockRoleRepo{})

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, domain.RoleOperator, roles[0].Authority)
}
