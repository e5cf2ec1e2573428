package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/domain"
)

// UniqueSuffix returns a short unique string for generating non-conflicting
// test data. The database is shared across parallel tests, so every seeded
// row must carry one.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCategory creates a category and returns it with its assigned id.
func SeedCategory(t *testing.T, pool *pgxpool.Pool, name string) domain.Category {
	t.Helper()
	ctx := context.Background()

	c := domain.Category{Name: name}
	err := pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`,
		c.Name,
	).Scan(&c.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedCategory insert: %v", err)
	}

	return c
}

// SeedProduct creates a product linked to the given categories and returns
// it with its assigned id.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, categories ...domain.Category) domain.Product {
	t.Helper()
	ctx := context.Background()

	p := domain.Product{
		Name:        name,
		Description: "Seeded product " + name,
		Price:       1999.90,
		Date:        time.Now().UTC().Truncate(time.Microsecond),
		Categories:  categories,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO products (name, description, price, img_url, date)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.Name, p.Description, p.Price, (*string)(nil), p.Date,
	).Scan(&p.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedProduct insert product: %v", err)
	}

	for _, c := range categories {
		_, err := pool.Exec(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)`,
			p.ID, c.ID,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedProduct link category: %v", err)
		}
	}

	return p
}

// SeedUser creates a user holding the given roles (looked up by authority)
// and returns it fully populated. The password hash is an opaque marker,
// not a real bcrypt digest.
func SeedUser(t *testing.T, pool *pgxpool.Pool, authorities ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := UniqueSuffix()
	u := domain.User{
		FirstName:    "Test",
		LastName:     "User " + suffix,
		Email:        "testuser-" + suffix + "@example.com",
		PasswordHash: "hash-" + suffix,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash,
	).Scan(&u.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	for _, authority := range authorities {
		var role domain.Role
		err := pool.QueryRow(ctx,
			`SELECT id, authority FROM roles WHERE authority = $1`,
			authority,
		).Scan(&role.ID, &role.Authority)
		if err != nil {
			t.Fatalf("testhelper: SeedUser lookup role %q: %v", authority, err)
		}

		_, err = pool.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
			u.ID, role.ID,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedUser link role: %v", err)
		}

		u.Roles = append(u.Roles, role)
	}

	return u
}

// SeedRecovery creates a password recovery token expiring at the given
// instant and returns it with its assigned id.
func SeedRecovery(t *testing.T, pool *pgxpool.Pool, email string, expiration time.Time) domain.PasswordRecovery {
	t.Helper()
	ctx := context.Background()

	rec := domain.PasswordRecovery{
		Email:      email,
		Token:      uuid.New().String(),
		Expiration: expiration.UTC().Truncate(time.Microsecond),
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO password_recoveries (email, token, expiration) VALUES ($1, $2, $3) RETURNING id`,
		rec.Email, rec.Token, rec.Expiration,
	).Scan(&rec.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedRecovery insert: %v", err)
	}

	return rec
}
