package rest_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kasuganosora/campuswellness/api/rest"
	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/scheduler"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
	"github.com/kasuganosora/campuswellness/wellness/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminKey = "secret-admin-key"

type adminEnv struct {
	*testEnv
	catalog *challenge.Catalog
	dir     *resource.Directory
	sched   *scheduler.Scheduler
}

func newAdminRouter(t *testing.T, key string) *adminEnv {
	e := newTestEnv(t)
	logger := zap.NewNop()
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	reg := prometheus.NewRegistry()
	probe := prometheus.NewCounter(prometheus.CounterOpts{Name: "wellness_test_probe_total", Help: "probe"})
	reg.MustRegister(probe)
	probe.Inc()

	catalog := challenge.NewCatalog(e.db, e.cache, time.Minute, logger)
	dir := resource.NewDirectory(e.db, e.cache, time.Minute, logger)
	h := rest.NewAdminHandler(e.db, catalog, dir, sched, reg, nil, logger)

	g := e.r.Group("/api/admin", rest.AdminAuth(key))
	g.GET("/metrics", h.Metrics)
	g.GET("/metrics/prometheus", h.Prometheus())
	g.POST("/challenges", h.CreateChallenge)
	g.POST("/resources", h.CreateResource)
	g.GET("/scheduler", h.ListSchedulerTasks)
	return &adminEnv{testEnv: e, catalog: catalog, dir: dir, sched: sched}
}

func TestAdminAuth_MissingKey(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	w := get(e.r, "/api/admin/metrics")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth_WrongKey(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	w := get(e.r, "/api/admin/metrics", "X-Admin-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth_EmptyConfigDisables(t *testing.T) {
	e := newAdminRouter(t, "")
	w := get(e.r, "/api/admin/metrics", "X-Admin-Key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminMetrics(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	_, alice := e.login(t, "alice")
	_, bob := e.login(t, "bob")
	now := time.Now().UTC()
	require.NoError(t, e.db.Create(&[]model.UserChallenge{
		{UserID: alice, ChallengeID: 1, Status: model.ChallengeStatusActive, StartDate: now, EndDate: now},
		{UserID: bob, ChallengeID: 1, Status: model.ChallengeStatusCompleted, Progress: 7, StartDate: now, EndDate: now},
		{UserID: bob, ChallengeID: 2, Status: model.ChallengeStatusActive, StartDate: now, EndDate: now},
	}).Error)
	e.sched.AddTicker("noop", time.Hour, func(context.Context) error { return nil })

	w := get(e.r, "/api/admin/metrics", "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		Users          int64            `json:"users"`
		Memberships    map[string]int64 `json:"memberships"`
		SchedulerTasks []string         `json:"scheduler_tasks"`
	}](t, w)
	assert.Equal(t, int64(2), resp.Users)
	assert.Equal(t, int64(2), resp.Memberships["active"])
	assert.Equal(t, int64(1), resp.Memberships["completed"])
	assert.Equal(t, []string{"noop"}, resp.SchedulerTasks)
}

func TestAdminCreateChallenge(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	// prime the catalog cache so the create has something to invalidate
	before, err := e.catalog.List(context.Background())
	require.NoError(t, err)

	w := postJSON(e.r, "/api/admin/challenges", map[string]interface{}{
		"title":      "Hydration Week",
		"category":   "Physical Health",
		"total_days": 7,
		"reward":     "Water Badge",
	}, "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Challenge](t, w)
	assert.NotZero(t, created.ID)

	after, err := e.catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
}

func TestAdminCreateChallenge_Invalid(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	w := postJSON(e.r, "/api/admin/challenges", map[string]interface{}{
		"title":      "Zero",
		"total_days": 0,
	}, "X-Admin-Key", adminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCreateResource(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	before, err := e.dir.All(context.Background())
	require.NoError(t, err)

	w := postJSON(e.r, "/api/admin/resources", map[string]interface{}{
		"title":    "Peer Support Line",
		"category": "Mental Health",
		"link":     "https://campus.edu/peer",
	}, "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	after, err := e.dir.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	w = postJSON(e.r, "/api/admin/resources", map[string]interface{}{
		"title":    "Bad Link",
		"category": "Mental Health",
		"link":     "not a url",
	}, "X-Admin-Key", adminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminScheduler(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	e.sched.AddTicker("audit_purge", time.Hour, func(context.Context) error { return nil })

	w := get(e.r, "/api/admin/scheduler", "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Tasks []scheduler.TaskStatus `json:"tasks"`
	}](t, w)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "audit_purge", resp.Tasks[0].Name)
	assert.Equal(t, time.Hour, resp.Tasks[0].Interval)
}

func TestAdminPrometheus(t *testing.T) {
	e := newAdminRouter(t, adminKey)
	w := get(e.r, "/api/admin/metrics/prometheus", "X-Admin-Key", adminKey)
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "wellness_test_probe_total 1"))
}
