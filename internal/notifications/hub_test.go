package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mdd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

type subsStub struct {
	mu     sync.Mutex
	byUser map[uint][]uint
	err    error
}

func (s *subsStub) SubscribedThemeIDs(_ context.Context, userID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.byUser[userID], nil
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHub_DeliverArticle_OnlySubscribers(t *testing.T) {
	t.Parallel()
	hub := NewHub(&subsStub{byUser: map[uint][]uint{1: {7}, 2: {8}}})
	defer func() { _ = hub.Shutdown(context.Background()) }()

	alice, err := hub.Register(1, nil)
	require.NoError(t, err)
	aliceTab, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	reached := hub.DeliverArticle(context.Background(), 7, []byte(`{"type":"article.created"}`))
	assert.Equal(t, 1, reached)
	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(aliceTab), 1)
	assert.Empty(t, drain(bob))
}

func TestHub_DeliverArticle_LookupFailureSkips(t *testing.T) {
	t.Parallel()
	hub := NewHub(&subsStub{err: errors.New("db down")})
	defer func() { _ = hub.Shutdown(context.Background()) }()

	c, err := hub.Register(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, hub.DeliverArticle(context.Background(), 1, []byte("x")))
	assert.Empty(t, drain(c))
}

func TestHub_ConnectionLimits(t *testing.T) {
	t.Parallel()
	hub := NewHub(&subsStub{})

	clients := make([]*Client, 0, maxConnsPerUser)
	for i := 0; i < maxConnsPerUser; i++ {
		c, err := hub.Register(9, nil)
		require.NoError(t, err)
		clients = append(clients, c)
	}
	_, err := hub.Register(9, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)

	hub.UnregisterClient(clients[0])
	hub.UnregisterClient(clients[0])
	assert.Equal(t, maxConnsPerUser-1, hub.Connected(9))

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Connected(9))
	_, err = hub.Register(9, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_TrySend_FullBuffer(t *testing.T) {
	t.Parallel()
	hub := NewHub(&subsStub{})
	defer func() { _ = hub.Shutdown(context.Background()) }()

	c, err := hub.Register(1, nil)
	require.NoError(t, err)
	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
}

func TestHub_StartWiring_RoutesRedisEvents(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub(&subsStub{byUser: map[uint][]uint{1: {2}}})
	defer func() { _ = hub.Shutdown(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishArticleCreated(context.Background(), &models.Article{ID: 1, ThemeID: 2, Title: "Intro to Go"}))

	assert.Eventually(t, func() bool {
		return len(c.Send) == 1
	}, testEventuallyTimeout, testPollInterval)
}
