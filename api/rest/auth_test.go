package rest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kasuganosora/campuswellness/api/rest"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthRouter(t *testing.T) *testEnv {
	e := newTestEnv(t)
	h := rest.NewAuthHandler(e.db, e.cache, testSec, nil, zap.NewNop())
	e.r.POST("/api/auth/register", h.Register)
	e.r.POST("/api/auth/login", h.Login)
	e.r.POST("/api/auth/logout", e.auth(), h.Logout)
	e.r.POST("/api/auth/refresh", e.auth(), h.Refresh)
	e.r.GET("/api/auth/me", e.auth(), h.Me)
	return e
}

type authResp struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

func register(t *testing.T, e *testEnv, username, password string) authResp {
	t.Helper()
	w := postJSON(e.r, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@campus.edu",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authResp](t, w)
}

func TestRegister(t *testing.T) {
	e := newAuthRouter(t)

	resp := register(t, e, "alice", "pass1234")
	assert.NotEmpty(t, resp.Token)
	assert.NotZero(t, resp.User.ID)
	assert.Equal(t, "alice@campus.edu", resp.User.Email)

	ok, err := e.cache.Exists(context.Background(), mw.SessionKey(resp.Token))
	require.NoError(t, err)
	assert.True(t, ok, "register should start a session")
}

func TestRegister_Duplicate(t *testing.T) {
	e := newAuthRouter(t)
	register(t, e, "alice", "pass1234")

	w := postJSON(e.r, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "other@campus.edu",
		"password": "pass1234",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username or email already registered", message(t, w))
}

func TestRegister_Validation(t *testing.T) {
	e := newAuthRouter(t)
	cases := []map[string]string{
		{"username": "alice", "email": "not-an-email", "password": "pass1234"},
		{"username": "alice", "email": "alice@campus.edu", "password": "123"},
		{"email": "alice@campus.edu", "password": "pass1234"},
	}
	for _, body := range cases {
		w := postJSON(e.r, "/api/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestLogin(t *testing.T) {
	e := newAuthRouter(t)
	reg := register(t, e, "bob", "correct-horse")

	w := postJSON(e.r, "/api/auth/login", map[string]string{"username": "bob", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[authResp](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	w = postJSON(e.r, "/api/auth/login", map[string]string{"email": "BOB@campus.edu", "password": "correct-horse"})
	assert.Equal(t, http.StatusOK, w.Code, "login by email is case-insensitive")
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newAuthRouter(t)
	register(t, e, "bob", "correct-horse")

	w := postJSON(e.r, "/api/auth/login", map[string]string{"username": "bob", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", message(t, w))

	w = postJSON(e.r, "/api/auth/login", map[string]string{"username": "nobody", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", message(t, w))
}

func TestLogin_MissingIdentity(t *testing.T) {
	e := newAuthRouter(t)
	w := postJSON(e.r, "/api/auth/login", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	e := newAuthRouter(t)
	reg := register(t, e, "carol", "pass1234")

	w := get(e.r, "/api/auth/me", "Authorization", "Bearer "+reg.Token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]interface{}](t, w)
	assert.Equal(t, "carol", me["username"])
	assert.NotContains(t, me, "password_hash")
}

func TestMe_NoToken(t *testing.T) {
	e := newAuthRouter(t)
	w := get(e.r, "/api/auth/me")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", message(t, w))
}

func TestLogout(t *testing.T) {
	e := newAuthRouter(t)
	reg := register(t, e, "dave", "pass1234")
	bearer := "Bearer " + reg.Token

	w := postJSON(e.r, "/api/auth/logout", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(e.r, "/api/auth/me", "Authorization", bearer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Session expired", message(t, w))
}

func TestRefresh(t *testing.T) {
	e := newAuthRouter(t)
	reg := register(t, e, "erin", "pass1234")
	oldBearer := "Bearer " + reg.Token

	w := postJSON(e.r, "/api/auth/refresh", nil, "Authorization", oldBearer)
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode[map[string]string](t, w)["token"]
	require.NotEmpty(t, fresh)
	assert.NotEqual(t, reg.Token, fresh)

	assert.Equal(t, http.StatusUnauthorized, get(e.r, "/api/auth/me", "Authorization", oldBearer).Code)
	assert.Equal(t, http.StatusOK, get(e.r, "/api/auth/me", "Authorization", "Bearer "+fresh).Code)
}
