package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mdd/internal/config"
	"mdd/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

// newTestEnv wires a full server over in-memory SQLite and miniredis.
func newTestEnv(t *testing.T, featureFlags string) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Port:           "0",
		Env:            "test",
		JWTSecret:      testSecret,
		JWTExpiration:  time.Hour,
		BcryptCost:     bcrypt.MinCost,
		AllowedOrigins: "http://localhost:4200",
		FeatureFlags:   featureFlags,
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	})

	return &testEnv{srv: srv, app: srv.newApp(), db: db, mr: mr}
}

// do sends a JSON request and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// doInto is do plus decoding the body into dest, requiring wantStatus.
func (e *testEnv) doInto(t *testing.T, method, path, token string, body any, wantStatus int, dest any) {
	t.Helper()
	status, raw := e.do(t, method, path, token, body)
	require.Equal(t, wantStatus, status, "body: %s", raw)
	if dest != nil {
		require.NoError(t, json.Unmarshal(raw, dest))
	}
}

// signUp registers and logs in a user, returning the bearer token and ID.
func (e *testEnv) signUp(t *testing.T, username string) (string, uint) {
	t.Helper()
	email := username + "@example.com"

	e.doInto(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: username,
		Email:    email,
		Password: "Secret1!",
	}, http.StatusCreated, nil)

	var login struct {
		Token string `json:"token"`
		ID    uint   `json:"id"`
	}
	e.doInto(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    email,
		Password: "Secret1!",
	}, http.StatusOK, &login)
	require.NotEmpty(t, login.Token)
	return login.Token, login.ID
}

func (e *testEnv) createTheme(t *testing.T, token, name string) uint {
	t.Helper()
	var theme struct {
		ID uint `json:"id"`
	}
	e.doInto(t, http.MethodPost, "/api/themes", token, ThemeRequest{
		Name:        name,
		Description: name + " discussions",
	}, http.StatusCreated, &theme)
	return theme.ID
}

func (e *testEnv) createArticle(t *testing.T, token string, themeID uint, title string) uint {
	t.Helper()
	var article struct {
		ID uint `json:"id"`
	}
	e.doInto(t, http.MethodPost, "/api/articles", token, ArticleRequest{
		Title:   title,
		Content: "A first look at the language and its tooling.",
		ThemeID: themeID,
	}, http.StatusCreated, &article)
	return article.ID
}
