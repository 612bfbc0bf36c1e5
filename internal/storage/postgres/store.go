package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for every API resource.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the schema idempotently.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		kyc_status TEXT NOT NULL DEFAULT 'none',
		country TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DROP INDEX IF EXISTS users_email_unique_idx;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_idx ON users (lower(username));`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (lower(email));`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		amount NUMERIC(24,8) NOT NULL,
		fee NUMERIC(24,8) NOT NULL DEFAULT 0,
		currency CHAR(3) NOT NULL,
		recipient_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS transactions_user_created_idx ON transactions (user_id, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS transactions_created_idx ON transactions (created_at);`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		actor_email TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT '',
		metadata JSONB NOT NULL DEFAULT '{}',
		ip TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS audit_logs_created_idx ON audit_logs (created_at DESC, id DESC);`,
	`CREATE TABLE IF NOT EXISTS recipients (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		bank_name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		currency CHAR(3) NOT NULL,
		country TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS kyc_submissions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		document_type TEXT NOT NULL,
		document_ref TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT NOT NULL DEFAULT '',
		reviewer_id TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		reviewed_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS kyc_one_pending_per_user_idx ON kyc_submissions (user_id) WHERE status = 'pending';`,
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
