package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/campuswellness/cache"
	"github.com/kasuganosora/campuswellness/config"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSec = config.SecurityConfig{
	JWTSecret:  "test-secret",
	JWTTTLH:    72 * time.Hour,
	BcryptCost: 4,
}

// testEnv is a seeded DB plus a local cache shared by one test's handlers.
type testEnv struct {
	db    *gorm.DB
	cache cache.Cache
	r     *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		db:    testutil.SetupSeededDB(t),
		cache: testutil.SetupTestCache(t),
		r:     gin.New(),
	}
}

func (e *testEnv) auth() gin.HandlerFunc {
	return mw.Auth(testSec, e.cache)
}

// login creates a user row and a live session, returning the bearer header.
func (e *testEnv) login(t *testing.T, username string) (string, int64) {
	t.Helper()
	u := model.User{Username: username, Email: username + "@campus.edu", PasswordHash: "x"}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := mw.GenerateToken(u.ID, testSec.JWTSecret, testSec.JWTTTLH)
	require.NoError(t, err)
	require.NoError(t, e.cache.Set(context.Background(), mw.SessionKey(token), strconv.FormatInt(u.ID, 10), time.Hour))
	return "Bearer " + token, u.ID
}

func doJSON(r *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r *gin.Engine, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodPost, path, body, headers...)
}

func get(r *gin.Engine, path string, headers ...string) *httptest.ResponseRecorder {
	return doJSON(r, http.MethodGet, path, nil, headers...)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["message"]
}
