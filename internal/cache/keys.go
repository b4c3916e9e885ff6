package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix          = "user:%d"
	SubscriptionsKeyPrefix = "user:%d:subscriptions"
	SubscriptionsGenPrefix = "user:%d:subscriptions:gen"
)

const (
	UserTTL          = 5 * time.Minute
	SubscriptionsTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SubscriptionsKey(userID uint) string {
	return fmt.Sprintf(SubscriptionsKeyPrefix, userID)
}

func SubscriptionsGenKey(userID uint) string {
	return fmt.Sprintf(SubscriptionsGenPrefix, userID)
}

// Invalidate deletes key; a no-op without Redis.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	InvalidateSubscriptions(ctx, userID)
}

// InvalidateSubscriptions bumps the generation before dropping the set so an
// in-flight AsideGuarded fill for the old generation is discarded.
func InvalidateSubscriptions(ctx context.Context, userID uint) {
	if client == nil {
		return
	}
	genKey := SubscriptionsGenKey(userID)
	_, _ = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, SubscriptionsTTL)
		pipe.Del(ctx, SubscriptionsKey(userID))
		return nil
	})
}
