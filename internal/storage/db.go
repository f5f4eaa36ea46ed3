package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Querier is the subset of *pgxpool.Pool the Postgres backend needs.
// pgxmock pools satisfy it too.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores the workouts blob in the blobs table.
type Postgres struct {
	pool  Querier
	key   string
	close func()
}

// NewPostgres connects a pool and pings it.
func NewPostgres(ctx context.Context, dsn, key string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	p := newPostgres(pool, key)
	p.close = pool.Close
	return p, nil
}

func newPostgres(q Querier, key string) *Postgres {
	return &Postgres{pool: q, key: key}
}

// Save upserts the blob under the configured key.
func (p *Postgres) Save(ctx context.Context, blob string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO blobs (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		p.key, blob)
	if err != nil {
		return fmt.Errorf("saving blob %q: %w", p.key, err)
	}
	return nil
}

// Load reads the blob stored under the configured key.
func (p *Postgres) Load(ctx context.Context) (string, bool, error) {
	var blob string
	err := p.pool.QueryRow(ctx, `SELECT value FROM blobs WHERE key = $1`, p.key).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("loading blob %q: %w", p.key, err)
	}
	return blob, true, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}

// RunMigrations applies the embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
