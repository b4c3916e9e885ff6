// Package bootstrap wires the process-wide runtime shared by the server and tooling commands.
package bootstrap

import (
	"fmt"
	"log/slog"

	"mdd/internal/cache"
	"mdd/internal/config"
	"mdd/internal/database"
	"mdd/internal/middleware"
	"mdd/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedThemes upserts the built-in theme list once the schema is in place.
	SeedThemes bool
	// SkipSchema opens the pools without applying DB_SCHEMA_MODE.
	SkipSchema bool
}

// InitRuntime connects to DB and Redis and optionally seeds the built-in themes.
// A nil Redis client is returned when Redis is unreachable; callers degrade.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: !opts.SkipSchema})
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()
	if r == nil {
		middleware.Logger.Warn("Redis unavailable; caching, rate limits and realtime feed are disabled",
			slog.String("addr", cfg.RedisURL))
	}

	if opts.SeedThemes {
		themes, err := seed.Themes(db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in themes: %w", err)
		}
		middleware.Logger.Info("Built-in themes ensured", slog.Int("count", len(themes)))
	}

	return db, r, nil
}
