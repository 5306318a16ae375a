// Package bootstrap wires the runtime dependencies shared by the server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/media"
	"inkwell/internal/middleware"
	"inkwell/internal/notifications"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema leaves the schema untouched, for commands that manage it themselves.
	SkipSchema bool
	// SeedFixtures inserts the default categories and tags after the schema is applied.
	SeedFixtures bool
}

// Runtime holds the connected dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store media.Store
}

// InitRuntime connects to the database, applies the schema, connects to Redis and opens
// the media store. Redis is optional: a connection failure is logged and the runtime
// continues without it.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if !opts.SkipSchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SeedFixtures {
		fx, err := seed.DefaultFixtures()
		if err == nil {
			err = seed.ApplyFixtures(ctx, db, fx)
		}
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("seed fixtures: %w", err)
		}
	}

	rdb, err := notifications.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("Redis unavailable, live feed limited to this instance",
			slog.String("error", err.Error()))
		rdb = nil
	}

	store, err := media.New(ctx, cfg)
	if err != nil {
		_ = database.Close(db)
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("media store: %w", err)
	}

	return &Runtime{DB: db, Redis: rdb, Store: store}, nil
}

// Close releases the database pool and the Redis client.
func (r *Runtime) Close() error {
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	return database.Close(r.DB)
}
