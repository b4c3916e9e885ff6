package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"mdd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchArticles_CaseInsensitive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	token, _ := env.signUp(t, "alice")
	themeID := env.createTheme(t, token, "Go")
	env.createArticle(t, token, themeID, "Intro to Go")
	env.createArticle(t, token, themeID, "Concurrency Patterns")

	for _, q := range []string{"intro", "INTRO", "To gO"} {
		t.Run(q, func(t *testing.T) {
			var found []models.ArticleResponse
			env.doInto(t, http.MethodGet, "/api/articles/search?title="+url.QueryEscape(q), "", nil, http.StatusOK, &found)
			require.Len(t, found, 1)
			assert.Equal(t, "Intro to Go", found[0].Title)
			assert.Equal(t, "alice", found[0].AuthorUsername)
			assert.Equal(t, "Go", found[0].ThemeName)
		})
	}
}

func TestSearchArticles_NoMatchIsNoContent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	token, _ := env.signUp(t, "alice")
	env.createArticle(t, token, env.createTheme(t, token, "Go"), "Intro to Go")

	status, body := env.do(t, http.MethodGet, "/api/articles/search?title=haskell", "", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)

	status, _ = env.do(t, http.MethodGet, "/api/articles/search?title=", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFeed_EmptyWithoutSubscriptions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	token, _ := env.signUp(t, "alice")
	env.createArticle(t, token, env.createTheme(t, token, "Go"), "Intro to Go")

	status, raw := env.do(t, http.MethodGet, "/api/articles/feed", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestArticles_OwnershipIsEnforced(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	alice, _ := env.signUp(t, "alice")
	bob, _ := env.signUp(t, "bob")
	articleID := env.createArticle(t, alice, env.createTheme(t, alice, "Go"), "Intro to Go")
	path := fmt.Sprintf("/api/articles/%d", articleID)

	var forbidden models.ErrorResponse
	env.doInto(t, http.MethodPut, path, bob, ArticleRequest{
		Title:   "Hijacked",
		Content: "Not my article at all.",
	}, http.StatusForbidden, &forbidden)
	assert.Equal(t, http.StatusForbidden, forbidden.Status)
	env.doInto(t, http.MethodDelete, path, bob, nil, http.StatusForbidden, nil)

	var updated models.ArticleResponse
	env.doInto(t, http.MethodPut, path, alice, ArticleRequest{
		Title:   "Intro to Go, revised",
		Content: "A second look at the language.",
	}, http.StatusOK, &updated)
	assert.Equal(t, "Intro to Go, revised", updated.Title)

	env.doInto(t, http.MethodDelete, path, alice, nil, http.StatusOK, nil)
	env.doInto(t, http.MethodGet, path, "", nil, http.StatusNotFound, nil)
}

func TestCreateArticle_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	token, _ := env.signUp(t, "alice")
	themeID := env.createTheme(t, token, "Go")

	tests := []struct {
		name       string
		req        ArticleRequest
		wantStatus int
	}{
		{"short title", ArticleRequest{Title: "Go", Content: "Long enough content.", ThemeID: themeID}, http.StatusBadRequest},
		{"short content", ArticleRequest{Title: "Intro to Go", Content: "tiny", ThemeID: themeID}, http.StatusBadRequest},
		{"unknown theme", ArticleRequest{Title: "Intro to Go", Content: "Long enough content.", ThemeID: 999}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(t, http.MethodPost, "/api/articles", token, tt.req)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestComments_ThreadAndOwnership(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	alice, _ := env.signUp(t, "alice")
	bob, bobID := env.signUp(t, "bob")
	articleID := env.createArticle(t, alice, env.createTheme(t, alice, "Go"), "Intro to Go")

	var comment models.CommentResponse
	env.doInto(t, http.MethodPost, "/api/comments", bob, CommentRequest{
		Content:   "Great write-up",
		ArticleID: articleID,
	}, http.StatusCreated, &comment)
	assert.Equal(t, bobID, comment.AuthorID)
	assert.Equal(t, "Intro to Go", comment.ArticleTitle)

	var thread []models.CommentResponse
	env.doInto(t, http.MethodGet, fmt.Sprintf("/api/comments/article/%d", articleID), "", nil, http.StatusOK, &thread)
	require.Len(t, thread, 1)
	assert.Equal(t, "Great write-up", thread[0].Content)

	var byUser []models.CommentResponse
	env.doInto(t, http.MethodGet, fmt.Sprintf("/api/comments/user/%d", bobID), "", nil, http.StatusOK, &byUser)
	assert.Len(t, byUser, 1)

	path := fmt.Sprintf("/api/comments/%d", comment.ID)
	env.doInto(t, http.MethodPut, path, alice, CommentRequest{Content: "Edited by someone else"}, http.StatusForbidden, nil)
	env.doInto(t, http.MethodDelete, path, alice, nil, http.StatusForbidden, nil)
	env.doInto(t, http.MethodDelete, path, bob, nil, http.StatusOK, nil)

	env.doInto(t, http.MethodGet, "/api/comments/article/999", "", nil, http.StatusNotFound, nil)
}
