// Command cleanup-tokens deletes expired and consumed password-recovery
// tokens. Expiry is enforced lazily by the lookup query, so this sweeper
// is hygiene, not correctness.
//
// Usage:
//
//	cleanup-tokens
//
// Requires DATABASE_DSN environment variable to be set.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres/recovery"
)

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	removed, err := recovery.New(pool).DeleteStale(ctx, time.Now())
	if err != nil {
		log.Fatalf("cleanup tokens: %v", err)
	}

	fmt.Printf("Deleted %d expired/consumed recovery tokens.\n", removed)
}
