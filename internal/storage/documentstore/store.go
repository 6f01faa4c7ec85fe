// Package documentstore is the Document Store Adapter (C12): the
// PostgreSQL-backed half of the two-store content storage design,
// holding the canonical SiteProfile record plus the append-only
// CrawlLog and ApiRequestLog tables. Grounded on
// _examples/lueurxax-TelegramDigestBot/internal/db/db.go for the
// pgxpool connect-with-retry and goose advisory-lock migration pattern;
// raw pgx queries replace that teacher's sqlc-generated ones since no
// code generator is available here (see DESIGN.md).
package documentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rohmanhakim/search-engine-core/internal/storage/documentstore/migrations"
)

// Store owns the PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn, retrying with a short backoff the way the
// teacher's db.New does, since a freshly started Postgres container may
// not accept connections yet.
func New(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &Store{pool: pool}, nil
			}
		}
		if pool != nil {
			pool.Close()
		}
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to document store after retries: %w", err)
}

func (s *Store) Close() {
	s.pool.Close()
}

const migrationLockID = 5742

// Migrate applies every pending goose migration under migrations.FS,
// guarded by a Postgres advisory lock so concurrent instances don't race.
func (s *Store) Migrate(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return err
	}
	defer func() {
		_, _ = conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	dbSQL := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer func() {
		_ = dbSQL.Close()
	}()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(dbSQL, ".")
}
