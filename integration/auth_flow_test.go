package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullAuthLifecycle(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	username := UniqueID("auth")
	password := "testpass1234"

	// 1. Register → token plus user.
	token1, userID := ts.Register(t, username, password)
	require.NotEmpty(t, token1)
	require.Greater(t, userID, int64(0))

	// 2. Token is accepted.
	resp := ts.Get(t, "/api/auth/me", token1)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]interface{}
	ReadJSON(t, resp, &me)
	assert.Equal(t, username, me["username"])

	// 3. Login → same user, new token.
	token2, userID2 := ts.Login(t, username, password)
	assert.Equal(t, userID, userID2)
	assert.NotEqual(t, token1, token2)

	// 4. Both sessions are live until logged out.
	resp = ts.Get(t, "/api/mood", token1)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 5. Logout token2 → token2 invalidated, token1 untouched.
	resp = ts.PostJSON(t, "/api/auth/logout", nil, token2)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.Get(t, "/api/mood", token2)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Session expired", ReadMessage(t, resp))

	resp = ts.Get(t, "/api/mood", token1)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginWrongPassword(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	username := UniqueID("wrongpw")
	ts.Register(t, username, "correctpass")

	resp := ts.PostJSON(t, "/api/auth/login", map[string]string{
		"username": username,
		"password": "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", ReadMessage(t, resp))
}

func TestTokenRefresh(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	token, _ := ts.Register(t, UniqueID("refresh"), "pass1234")

	resp := ts.PostJSON(t, "/api/auth/refresh", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]interface{}
	ReadJSON(t, resp, &result)
	newToken := result["token"].(string)
	require.NotEmpty(t, newToken)
	assert.NotEqual(t, token, newToken)

	// Old token should no longer work.
	resp = ts.Get(t, "/api/challenges/active", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// New token should work.
	resp = ts.Get(t, "/api/challenges/active", newToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestInvalidToken(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	resp := ts.Get(t, "/api/challenges/active", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", ReadMessage(t, resp))
}

func TestHealthEndpoint(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	resp := ts.Get(t, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]interface{}
	ReadJSON(t, resp, &result)
	assert.Equal(t, "ok", result["status"])
}

func TestCORS(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/challenges", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", AllowedOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, AllowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, ts.URL+"/api/challenges", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	resp := ts.Get(t, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", ReadMessage(t, resp))
}
