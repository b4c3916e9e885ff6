package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"mdd/internal/notifications"

	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketResponse struct {
	Ticket    string `json:"ticket"`
	ExpiresIn int    `json:"expiresIn"`
}

func TestIssueWSTicket(t *testing.T) {
	t.Parallel()

	t.Run("flag off", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, "")
		token, _ := env.signUp(t, "alice")
		env.doInto(t, http.MethodPost, "/api/ws/ticket", token, nil, http.StatusForbidden, nil)
	})

	t.Run("flag on", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, "realtime_feed=on")
		token, id := env.signUp(t, "alice")

		var resp ticketResponse
		env.doInto(t, http.MethodPost, "/api/ws/ticket", token, nil, http.StatusOK, &resp)
		require.NotEmpty(t, resp.Ticket)
		assert.Equal(t, int(wsTicketTTL.Seconds()), resp.ExpiresIn)

		key := wsTicketKey(resp.Ticket)
		stored, err := env.mr.Get(key)
		require.NoError(t, err)
		assert.Equal(t, strconv.FormatUint(uint64(id), 10), stored)
		assert.Equal(t, wsTicketTTL, env.mr.TTL(key))
	})
}

func TestWSTicketRequired(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")

	app := fiber.New()
	app.Get("/ws", env.srv.WSTicketRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	upgrade := func(ticket string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/ws?ticket="+ticket, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	require.NoError(t, env.mr.Set(wsTicketKey("t-1"), "123"))

	first := upgrade("t-1")
	assert.Equal(t, http.StatusOK, first.StatusCode)
	var body map[string]uint
	require.NoError(t, json.NewDecoder(first.Body).Decode(&body))
	assert.Equal(t, uint(123), body["userID"])
	assert.False(t, env.mr.Exists(wsTicketKey("t-1")), "ticket must be single use")

	assert.Equal(t, http.StatusUnauthorized, upgrade("t-1").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, upgrade("").StatusCode)

	require.NoError(t, env.mr.Set(wsTicketKey("t-bad"), "not-a-number"))
	assert.Equal(t, http.StatusUnauthorized, upgrade("t-bad").StatusCode)

	plain, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws?ticket=t-1", nil), -1)
	require.NoError(t, err)
	defer func() { _ = plain.Body.Close() }()
	assert.Equal(t, http.StatusUpgradeRequired, plain.StatusCode)
}

func TestFeedSocket_DeliversArticlesForSubscribedThemes(t *testing.T) {
	env := newTestEnv(t, "realtime_feed=on")
	alice, _ := env.signUp(t, "alice")
	bob, bobID := env.signUp(t, "bob")
	goID := env.createTheme(t, alice, "Go")
	rustID := env.createTheme(t, alice, "Rust")
	env.doInto(t, http.MethodPost, fmt.Sprintf("/api/themes/%d/subscribe", goID), bob, nil, http.StatusOK, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, env.srv.hub.StartWiring(ctx, env.srv.notifier))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() {
		_ = env.srv.hub.Shutdown(context.Background())
		_ = env.app.Shutdown()
	})

	var ticket ticketResponse
	env.doInto(t, http.MethodPost, "/api/ws/ticket", bob, nil, http.StatusOK, &ticket)

	conn, _, err := gorillaws.DefaultDialer.Dial(
		fmt.Sprintf("ws://%s/api/ws/feed?ticket=%s", ln.Addr(), ticket.Ticket), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool {
		return env.srv.hub.Connected(bobID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Only the article under the subscribed theme reaches bob.
	env.createArticle(t, alice, rustID, "Intro to Rust")
	env.createArticle(t, alice, goID, "Intro to Go")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event notifications.FeedEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, notifications.EventArticleCreated, event.Type)
	assert.Equal(t, "Intro to Go", event.Payload.Title)
	assert.Equal(t, goID, event.Payload.ThemeID)
}
