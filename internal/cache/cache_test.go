package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = client.Close()
		SetClient(nil)
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			calls++
			*dest = cachedUser{ID: 7, Username: "alice"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, "alice", first.Username)
	assert.True(t, mr.Exists("user:7"))

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	mr.FastForward(UserTTL + time.Second)
	var third cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &third, UserTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("boom")

	var dest cachedUser
	err := Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:1"))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	calls := 0
	var dest cachedUser
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
	Invalidate(context.Background(), UserKey(1))
}

func TestInvalidateUser(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), cachedUser{ID: 3}, UserTTL))
	require.NoError(t, SetJSON(ctx, SubscriptionsKey(3), []uint{1, 2}, SubscriptionsTTL))

	InvalidateUser(ctx, 3)
	assert.False(t, mr.Exists("user:3"))
	assert.False(t, mr.Exists("user:3:subscriptions"))
}

func TestAsideGuarded_DropsFillRacingInvalidation(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()
	key, genKey := SubscriptionsKey(4), SubscriptionsGenKey(4)

	calls := 0
	var ids []uint
	err := AsideGuarded(ctx, key, genKey, &ids, SubscriptionsTTL, func() error {
		calls++
		ids = []uint{1}
		// A writer commits and invalidates while this read is in flight.
		InvalidateSubscriptions(ctx, 4)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
	assert.False(t, mr.Exists(key), "stale fill must not be cached")
	assert.True(t, mr.Exists(genKey))

	err = AsideGuarded(ctx, key, genKey, &ids, SubscriptionsTTL, func() error {
		calls++
		ids = []uint{1, 2}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, mr.Exists(key))

	var cached []uint
	hit, err := GetJSON(ctx, key, &cached)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []uint{1, 2}, cached)
}

func TestGetJSON_Miss(t *testing.T) {
	withMiniredis(t)
	var ids []uint
	hit, err := GetJSON(context.Background(), SubscriptionsKey(9), &ids)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInitRedis_InvalidURL(t *testing.T) {
	InitRedis("redis://:bad url")
	assert.Nil(t, GetClient())
}
