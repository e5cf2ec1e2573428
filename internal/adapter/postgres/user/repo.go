// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres"
	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/rowgroup"
)

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const listIDsSQL = `
SELECT id
FROM users
ORDER BY first_name ASC, id ASC
LIMIT $1 OFFSET $2`

const countSQL = `SELECT COUNT(*) FROM users`

const findByIDsSQL = `
SELECT u.id, u.first_name, u.last_name, u.email, u.password_hash,
       r.id, r.authority
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id
WHERE u.id = ANY($1::bigint[])`

const findAuthByEmailSQL = `
SELECT u.id, u.email, u.password_hash, r.id, r.authority
FROM users u
INNER JOIN user_roles ur ON ur.user_id = u.id
INNER JOIN roles r ON r.id = ur.role_id
WHERE u.email = $1`

const getIDByEmailSQL = `SELECT id FROM users WHERE email = $1`

const insertUserSQL = `
INSERT INTO users (first_name, last_name, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id`

const updateUserSQL = `
UPDATE users
SET first_name = $2, last_name = $3, email = $4
WHERE id = $1`

const updatePasswordSQL = `UPDATE users SET password_hash = $2 WHERE email = $1`

const deleteUserSQL = `DELETE FROM users WHERE id = $1`

const deleteRoleLinksSQL = `DELETE FROM user_roles WHERE user_id = $1`

const insertRoleLinksSQL = `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, unnest($2::bigint[])`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListIDs returns one page of user ids ordered by first name. The role join
// would multiply rows, so paging runs over the bare users table and the
// caller loads aggregates for the page separately.
func (r *Repo) ListIDs(ctx context.Context, page domain.PageRequest) ([]int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listIDsSQL, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}

	return ids, nil
}

// Count returns the total number of stored users.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int64
	if err := querier.QueryRow(ctx, countSQL).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return total, nil
}

// GetByID returns a user aggregate with its role set.
// Returns domain.ErrNotFound if the user does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	users, err := r.FindByIDsWithRoles(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}

	u := users[0]
	return &u, nil
}

// FindByIDsWithRoles loads full user aggregates for the given ids in one
// query, flattening the one-row-per-role result into one aggregate per user.
// Ids with no stored user are absent from the result.
func (r *Repo) FindByIDsWithRoles(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, findByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	defer rows.Close()

	var flat []userRow
	for rows.Next() {
		var row userRow
		if err := rows.Scan(
			&row.ID, &row.FirstName, &row.LastName, &row.Email, &row.PasswordHash,
			&row.RoleID, &row.Authority,
		); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		flat = append(flat, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}

	return flattenUsers(flat), nil
}

// GetIDByEmail resolves an email address to a user id.
// Returns domain.ErrNotFound if no user has the email.
func (r *Repo) GetIDByEmail(ctx context.Context, email string) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var id int64
	if err := querier.QueryRow(ctx, getIDByEmailSQL, email).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "user", 0)
	}

	return id, nil
}

// GetAuthByEmail returns the credential view for login: email, password hash
// and the full authority set, collapsed from one flat row per role.
// Returns domain.ErrNotFound if no user has the email.
func (r *Repo) GetAuthByEmail(ctx context.Context, email string) (*domain.UserAuth, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, findAuthByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("get user auth: %w", err)
	}
	defer rows.Close()

	var flat []authRow
	for rows.Next() {
		var row authRow
		if err := rows.Scan(&row.UserID, &row.Email, &row.PasswordHash, &row.RoleID, &row.Authority); err != nil {
			return nil, fmt.Errorf("scan user auth: %w", err)
		}
		flat = append(flat, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get user auth: %w", err)
	}

	auths := flattenAuth(flat)
	if len(auths) == 0 {
		return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}

	return &auths[0], nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new user and its role links, returning the assigned id.
// A duplicate email surfaces as domain.ErrAlreadyExists; a role reference
// with no stored row as domain.ErrDanglingReference.
func (r *Repo) Create(ctx context.Context, u *domain.User, roles []domain.RoleRef) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var id int64
	err := querier.QueryRow(ctx, insertUserSQL,
		u.FirstName, u.LastName, u.Email, u.PasswordHash,
	).Scan(&id)
	if err != nil {
		return 0, postgres.MapError(err, "user", 0)
	}

	if err := r.replaceRoles(ctx, querier, id, roles); err != nil {
		return 0, err
	}

	return id, nil
}

// Update rewrites the user's profile fields and replaces its whole role set.
// The password hash is untouched; password changes go through UpdatePassword.
// Returns domain.ErrNotFound if the user does not exist.
func (r *Repo) Update(ctx context.Context, u *domain.User, roles []domain.RoleRef) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateUserSQL, u.ID, u.FirstName, u.LastName, u.Email)
	if err != nil {
		return postgres.MapError(err, "user", u.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", u.ID, domain.ErrNotFound)
	}

	return r.replaceRoles(ctx, querier, u.ID, roles)
}

// UpdatePassword stores a new password hash for the user with the given
// email. Returns domain.ErrNotFound if no user has the email.
func (r *Repo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updatePasswordSQL, email, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a user and, via cascade, its role links.
// Returns domain.ErrNotFound if the user does not exist.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteUserSQL, id)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *Repo) replaceRoles(ctx context.Context, querier postgres.Querier, userID int64, roles []domain.RoleRef) error {
	if _, err := querier.Exec(ctx, deleteRoleLinksSQL, userID); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}

	if len(roles) == 0 {
		return nil
	}

	ids := make([]int64, len(roles))
	for i, ref := range roles {
		ids[i] = ref.ID
	}

	if _, err := querier.Exec(ctx, insertRoleLinksSQL, userID, ids); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("user %d roles: %w", userID, domain.ErrDanglingReference)
		}
		return fmt.Errorf("link user roles: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row flattening
// ---------------------------------------------------------------------------

// userRow is one denormalized (user, role) row. Role columns are NULL for
// users with no roles.
type userRow struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	RoleID       pgtype.Int8
	Authority    pgtype.Text
}

// authRow is one denormalized (user, role) row from the credential lookup.
// The query inner-joins roles, so the role columns are never NULL here.
type authRow struct {
	UserID       int64
	Email        string
	PasswordHash string
	RoleID       int64
	Authority    string
}

func flattenAuth(rows []authRow) []domain.UserAuth {
	return rowgroup.Flatten(rows,
		func(r authRow) int64 { return r.UserID },
		func(r authRow) domain.UserAuth {
			return domain.UserAuth{
				UserID:       r.UserID,
				Email:        r.Email,
				PasswordHash: r.PasswordHash,
			}
		},
		func(a *domain.UserAuth, r authRow) {
			a.Roles = append(a.Roles, domain.Role{ID: r.RoleID, Authority: r.Authority})
		},
	)
}

func flattenUsers(rows []userRow) []domain.User {
	users := rowgroup.Flatten(rows,
		func(r userRow) int64 { return r.ID },
		func(r userRow) domain.User {
			return domain.User{
				ID:           r.ID,
				FirstName:    r.FirstName,
				LastName:     r.LastName,
				Email:        r.Email,
				PasswordHash: r.PasswordHash,
			}
		},
		func(u *domain.User, r userRow) {
			if !r.RoleID.Valid {
				return
			}
			u.Roles = append(u.Roles, domain.Role{
				ID:        r.RoleID.Int64,
				Authority: r.Authority.String,
			})
		},
	)

	if users == nil {
		users = []domain.User{}
	}

	return users
}
