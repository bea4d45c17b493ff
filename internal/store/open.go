package store

import (
	"context"

	"github.com/juju/errors"
)

// Options selects and configures a backend.
type Options struct {
	Kind        string // memory, file, redis or postgres
	Key         string
	Path        string
	QuotaBytes  int
	DatabaseURL string
	RedisAddr   string
}

// Handle owns an opened backend and the connections behind it.
type Handle struct {
	Backend Backend
	Redis   *Redis
	DB      *DB
}

// Open builds the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (*Handle, error) {
	switch opts.Kind {
	case "memory":
		return &Handle{Backend: NewMemory(opts.QuotaBytes)}, nil
	case "file", "":
		f, err := NewFile(opts.Path, opts.QuotaBytes)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &Handle{Backend: f}, nil
	case "redis":
		r := NewRedis(opts.RedisAddr)
		return &Handle{Backend: NewRedisBackend(r.Client, opts.Key), Redis: r}, nil
	case "postgres":
		db, err := NewDB(opts.DatabaseURL)
		if err != nil {
			_ = db.Close()
			return nil, errors.Annotate(err, "connecting to postgres")
		}
		b, err := NewPostgresBackend(ctx, db.Client, opts.Key)
		if err != nil {
			_ = db.Close()
			return nil, errors.Trace(err)
		}
		return &Handle{Backend: b, DB: db}, nil
	}
	return nil, errors.NotSupportedf("store backend %q", opts.Kind)
}

// Healthy reports whether the backend's connection answers.
func (h *Handle) Healthy(ctx context.Context) bool {
	switch {
	case h.Redis != nil:
		return h.Redis.Healthy(ctx)
	case h.DB != nil:
		return h.DB.Client.PingContext(ctx) == nil
	}
	return true
}

// Close releases connections.
func (h *Handle) Close() error {
	if h.Redis != nil {
		return h.Redis.Close()
	}
	return h.DB.Close()
}
