package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthEndpoints_Register(t *testing.T) {
	t.Run("registers a new user", func(t *testing.T) {
		router, _, cleanup := setupTestApp(t)
		defer cleanup()

		w := doJSON(t, router, "POST", "/api/auth/register", "", gin.H{
			"username": "alice",
			"email":    "alice@example.com",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		router, _, cleanup := setupTestApp(t)
		defer cleanup()
		registerAndLogin(t, router, "alice")

		w := doJSON(t, router, "POST", "/api/auth/register", "", gin.H{
			"username": "alice",
			"email":    "other@example.com",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("weak password is a bad request", func(t *testing.T) {
		router, _, cleanup := setupTestApp(t)
		defer cleanup()

		w := doJSON(t, router, "POST", "/api/auth/register", "", gin.H{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "password",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		router, _, cleanup := setupTestApp(t)
		defer cleanup()

		w := doJSON(t, router, "POST", "/api/auth/register", "", gin.H{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthEndpoints_Login(t *testing.T) {
	router, _, cleanup := setupTestApp(t)
	defer cleanup()
	registerAndLogin(t, router, "alice")

	t.Run("returns tokens and user", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/auth/login", "", gin.H{
			"username": "alice",
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.NotEmpty(t, body["access"])
		assert.NotEmpty(t, body["refresh"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/auth/login", "", gin.H{
			"username": "alice",
			"password": "Wrong-Passw0rd!",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthEndpoints_Refresh(t *testing.T) {
	router, _, cleanup := setupTestApp(t)
	defer cleanup()
	registerAndLogin(t, router, "alice")

	w := doJSON(t, router, "POST", "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	refresh := decodeBody(t, w)["refresh"].(string)

	t.Run("exchanges a refresh token", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/auth/refresh", "", gin.H{"refresh": refresh})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decodeBody(t, w)["access"])
	})

	t.Run("rejects garbage", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/auth/refresh", "", gin.H{"refresh": "garbage"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthEndpoints_Profile(t *testing.T) {
	router, _, cleanup := setupTestApp(t)
	defer cleanup()
	token := registerAndLogin(t, router, "alice")

	t.Run("requires authentication", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns the profile", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "alice", body["username"])
	})

	t.Run("partial update", func(t *testing.T) {
		w := doJSON(t, router, "PATCH", "/api/profile", token, gin.H{
			"email": "fresh@example.com",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "fresh@example.com", decodeBody(t, w)["email"])
	})

	t.Run("empty update is a bad request", func(t *testing.T) {
		w := doJSON(t, router, "PATCH", "/api/profile", token, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
