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

func TestUsers_LookupAndAvailability(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	token, id := env.signUp(t, "alice")
	env.createArticle(t, token, env.createTheme(t, token, "Go"), "Intro to Go")

	var byID, byName models.UserResponse
	env.doInto(t, http.MethodGet, fmt.Sprintf("/api/users/%d", id), "", nil, http.StatusOK, &byID)
	env.doInto(t, http.MethodGet, "/api/users/username/alice", "", nil, http.StatusOK, &byName)
	assert.Equal(t, byID, byName)
	assert.Equal(t, 1, byID.ArticleCount)

	var list []models.UserResponse
	env.doInto(t, http.MethodGet, "/api/users", "", nil, http.StatusOK, &list)
	assert.Len(t, list, 1)

	env.doInto(t, http.MethodGet, "/api/users/username/nobody", "", nil, http.StatusNotFound, nil)

	tests := []struct {
		path      string
		available bool
	}{
		{"/api/users/check/username/alice", false},
		{"/api/users/check/username/bob", true},
		{"/api/users/check/email/" + url.PathEscape("alice@example.com"), false},
		{"/api/users/check/email/" + url.PathEscape("bob@example.com"), true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var body struct {
				Available bool `json:"available"`
			}
			env.doInto(t, http.MethodGet, tt.path, "", nil, http.StatusOK, &body)
			assert.Equal(t, tt.available, body.Available)
		})
	}
}

func TestUpdateUser_SelfOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	alice, aliceID := env.signUp(t, "alice")
	bob, _ := env.signUp(t, "bob")
	path := fmt.Sprintf("/api/users/%d", aliceID)

	env.doInto(t, http.MethodPut, path, bob, UpdateUserRequest{Username: "mallory"}, http.StatusForbidden, nil)

	var dup models.ErrorResponse
	env.doInto(t, http.MethodPut, path, alice, UpdateUserRequest{Username: "bob"}, http.StatusBadRequest, &dup)
	assert.Equal(t, models.NewDuplicateUsernameError().Message, dup.Message)

	var updated models.UserResponse
	env.doInto(t, http.MethodPut, path, alice, UpdateUserRequest{
		Username: "alice2",
		Password: "Another1!",
	}, http.StatusOK, &updated)
	assert.Equal(t, "alice2", updated.Username)

	// The new password works; the old one does not.
	env.doInto(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "alice@example.com", Password: "Another1!",
	}, http.StatusOK, nil)
	env.doInto(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "alice@example.com", Password: "Secret1!",
	}, http.StatusUnauthorized, nil)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	alice, aliceID := env.signUp(t, "alice")
	bob, bobID := env.signUp(t, "bob")
	env.createArticle(t, bob, env.createTheme(t, bob, "Go"), "Intro to Go")

	env.doInto(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), bob, nil, http.StatusForbidden, nil)

	var conflict models.ErrorResponse
	env.doInto(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", bobID), bob, nil, http.StatusConflict, &conflict)
	require.NotEmpty(t, conflict.Message)

	env.doInto(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), alice, nil, http.StatusOK, nil)
	env.doInto(t, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), "", nil, http.StatusNotFound, nil)
}

func TestGetFeatureFlags(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "realtime_feed=on")
	token, _ := env.signUp(t, "alice")

	var flags struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	env.doInto(t, http.MethodGet, "/api/features", token, nil, http.StatusOK, &flags)
	assert.Equal(t, "on", flags.Raw["realtime_feed"])
	assert.True(t, flags.Evaluated["realtime_feed"])
	assert.False(t, flags.Evaluated["strong_passwords"])
}
