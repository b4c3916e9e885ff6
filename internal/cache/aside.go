package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"mdd/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Aside implements cache-aside: on a hit dest is filled from Redis, otherwise
// fetch fills dest and the result is stored under key for ttl. Redis errors
// fall through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	if hit, err := GetJSON(ctx, key, dest); err == nil && hit {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.DebugContext(ctx, "cache set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

var errStaleFill = errors.New("cache: generation changed during fill")

// AsideGuarded is Aside for keys whose writers bump genKey on change. The
// fill is stored only if genKey still holds the value read before fetch,
// so a fetch that raced a write never overwrites the invalidation.
func AsideGuarded(ctx context.Context, key, genKey string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	if hit, err := GetJSON(ctx, key, dest); err == nil && hit {
		return nil
	}

	gen, err := client.Get(ctx, genKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fetch()
	}

	if err := fetch(); err != nil {
		return err
	}

	raw, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	err = client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
	default:
		middleware.Logger.DebugContext(ctx, "cache set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// GetJSON decodes the value at key into dest. hit is false on a miss.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value at key as JSON.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}
