package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/kasuganosora/campuswellness/api"
	"github.com/kasuganosora/campuswellness/audit"
	"github.com/kasuganosora/campuswellness/cache"
	"github.com/kasuganosora/campuswellness/config"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/scheduler"
	"github.com/kasuganosora/campuswellness/testutil"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
	"github.com/kasuganosora/campuswellness/wellness/insights"
	"github.com/kasuganosora/campuswellness/wellness/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminKey is the X-Admin-Key accepted by every TestServer.
const AdminKey = "integration-admin-key"

// AllowedOrigin is the only origin the TestServer's CORS layer accepts.
const AllowedOrigin = "https://wellness.campus.edu"

// TestServer wraps a real HTTP server with every service wired together.
type TestServer struct {
	DB        *gorm.DB
	Cache     cache.Cache
	Audit     *audit.Service
	Scheduler *scheduler.Scheduler
	Registry  *prometheus.Registry
	Server    *httptest.Server
	URL       string // http://127.0.0.1:<port>
	Cfg       *config.Config
}

// NewTestServer creates a fully wired server for integration testing.
// It mirrors the dependency wiring in main.go.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// ---- Infrastructure ----
	db := testutil.SetupSeededDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	cfg := &config.Config{
		Server: config.ServerConfig{
			AdminKey:       AdminKey,
			AllowedOrigins: []string{AllowedOrigin},
		},
		Cache: config.CacheConfig{CatalogTTL: time.Minute},
		Security: config.SecurityConfig{
			JWTSecret:      "integration-test-secret",
			JWTTTLH:        72 * time.Hour,
			BcryptCost:     4,
			RateLimitRPS:   1000,
			RateLimitBurst: 2000,
		},
		Audit: config.AuditConfig{Retention: time.Hour},
	}

	// ---- Services ----
	auditSvc := audit.New(db, logger)
	sched := scheduler.New(logger, scheduler.WithLocker(c, "integration"))
	reg := prometheus.NewRegistry()

	catalog := challenge.NewCatalog(db, c, cfg.Cache.CatalogTTL, logger)
	challengeSvc := challenge.NewService(db, logger)
	insightSvc := insights.NewService(db, challengeSvc)
	directory := resource.NewDirectory(db, c, cfg.Cache.CatalogTTL, logger)

	sched.AddTicker("resources_cache_warm", time.Hour, func(ctx context.Context) error {
		return directory.Warm(ctx)
	})

	r := api.NewRouter(api.Deps{
		Config:     cfg,
		DB:         db,
		Cache:      c,
		Logger:     logger,
		Auditor:    auditSvc,
		Scheduler:  sched,
		Metrics:    mw.NewHTTPMetrics(reg),
		Gatherer:   reg,
		Catalog:    catalog,
		Challenges: challengeSvc,
		Insights:   insightSvc,
		Directory:  directory,
	})

	// ---- Start server ----
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Admin-Key"}),
	)
	server := httptest.NewServer(cors(r))

	return &TestServer{
		DB:        db,
		Cache:     c,
		Audit:     auditSvc,
		Scheduler: sched,
		Registry:  reg,
		Server:    server,
		URL:       server.URL,
		Cfg:       cfg,
	}
}

// Close shuts down the test server and its background services.
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Scheduler.Stop()
	ts.Audit.Stop(context.Background())
}

// --- HTTP helpers ---

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}, token string, headers ...string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// PostJSON sends a POST request with JSON body and optional Bearer token.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPost, path, body, token)
}

// Get sends a GET request with optional Bearer token.
func (ts *TestServer) Get(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, nil, token)
}

// Put sends a PUT request with JSON body and optional Bearer token.
func (ts *TestServer) Put(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPut, path, body, token)
}

// Admin sends a request carrying the admin key.
func (ts *TestServer) Admin(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	return ts.do(t, method, path, body, "", "X-Admin-Key", AdminKey)
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// ReadMessage decodes a {"message": ...} error body.
func ReadMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	ReadJSON(t, resp, &body)
	return body.Message
}

// --- Auth helpers ---

// Register creates an account and returns its token and user ID.
func (ts *TestServer) Register(t *testing.T, username, password string) (token string, userID int64) {
	t.Helper()
	resp := ts.PostJSON(t, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@campus.edu",
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	ReadJSON(t, resp, &result)
	return result.Token, result.User.ID
}

// Login signs in with a username and returns the token and user ID.
func (ts *TestServer) Login(t *testing.T, username, password string) (token string, userID int64) {
	t.Helper()
	resp := ts.PostJSON(t, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	ReadJSON(t, resp, &result)
	return result.Token, result.User.ID
}

var testCounter uint64

// UniqueID returns a unique string suitable for usernames in tests.
func UniqueID(prefix string) string {
	n := atomic.AddUint64(&testCounter, 1)
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano()%100000, n)
}
