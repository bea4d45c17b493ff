package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/juju/errors"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// PostgresBackend keeps the blob in one row of a key/value table.
type PostgresBackend struct {
	db  *sql.DB
	key string
}

// NewPostgresBackend ensures the table exists.
func NewPostgresBackend(ctx context.Context, db *sql.DB, key string) (*PostgresBackend, error) {
	if key == "" {
		key = DefaultKey
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kiosk_storage (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, errors.Annotate(err, "creating kiosk_storage")
	}
	return &PostgresBackend{db: db, key: key}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Get(ctx context.Context) ([]byte, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kiosk_storage WHERE key = $1`, b.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return []byte(value), nil
}

func (b *PostgresBackend) Put(ctx context.Context, value []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kiosk_storage (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`, b.key, string(value))
	return errors.Trace(err)
}
