package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/campuswellness/audit"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/scheduler"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
	"github.com/kasuganosora/campuswellness/wellness/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db       *gorm.DB
	catalog  *challenge.Catalog
	dir      *resource.Directory
	sched    *scheduler.Scheduler
	gatherer prometheus.Gatherer
	audit    audit.Auditor
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	db *gorm.DB,
	catalog *challenge.Catalog,
	dir *resource.Directory,
	sched *scheduler.Scheduler,
	gatherer prometheus.Gatherer,
	a audit.Auditor,
	logger *zap.Logger,
) *AdminHandler {
	if a == nil {
		a = audit.Nop{}
	}
	return &AdminHandler{db: db, catalog: catalog, dir: dir, sched: sched, gatherer: gatherer, audit: a, logger: logger}
}

// Metrics returns user and membership counts.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	ctx := c.Request.Context()
	var users int64
	if err := h.db.WithContext(ctx).Model(&model.User{}).Count(&users).Error; err != nil {
		respondError(c, err)
		return
	}
	var rows []struct {
		Status model.ChallengeStatus
		N      int64
	}
	if err := h.db.WithContext(ctx).Model(&model.UserChallenge{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		respondError(c, err)
		return
	}
	memberships := gin.H{
		string(model.ChallengeStatusActive):    int64(0),
		string(model.ChallengeStatusCompleted): int64(0),
	}
	for _, r := range rows {
		memberships[string(r.Status)] = r.N
	}
	c.JSON(http.StatusOK, gin.H{
		"users":           users,
		"memberships":     memberships,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// CreateChallenge adds a catalog entry.
// POST /api/admin/challenges
func (h *AdminHandler) CreateChallenge(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		Category    string `json:"category" binding:"max=50"`
		TotalDays   int    `json:"total_days" binding:"required,gt=0"`
		Reward      string `json:"reward" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	ch := model.Challenge{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TotalDays:   req.TotalDays,
		Reward:      req.Reward,
	}
	if err := h.catalog.Create(c.Request.Context(), &ch); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Log(audit.Entry{
		TraceID:  mw.GetTraceID(c),
		Action:   audit.ActionChallengeCreate,
		Response: ch,
		IP:       c.ClientIP(),
	})
	c.JSON(http.StatusCreated, ch)
}

// CreateResource adds a campus resource.
// POST /api/admin/resources
func (h *AdminHandler) CreateResource(c *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"required,max=255"`
		Description  string `json:"description"`
		Category     string `json:"category" binding:"required,max=50"`
		Contact      string `json:"contact" binding:"max=255"`
		Location     string `json:"location" binding:"max=255"`
		Availability string `json:"availability" binding:"max=255"`
		Link         string `json:"link" binding:"omitempty,url,max=255"`
		Icon         string `json:"icon" binding:"max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	r := model.Resource{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Contact:      req.Contact,
		Location:     req.Location,
		Availability: req.Availability,
		Link:         req.Link,
		Icon:         req.Icon,
	}
	if err := h.dir.Create(c.Request.Context(), &r); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Log(audit.Entry{
		TraceID:  mw.GetTraceID(c),
		Action:   audit.ActionResourceCreate,
		Response: r,
		IP:       c.ClientIP(),
	})
	h.logger.Info("resource created", zap.Int64("resource_id", r.ID), zap.String("title", r.Title))
	c.JSON(http.StatusCreated, r)
}

// ListSchedulerTasks returns every registered ticker task with its run stats.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Status()})
}

// Prometheus serves the registry in the Prometheus text format.
// GET /api/admin/metrics/prometheus
func (h *AdminHandler) Prometheus() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// If adminKey is empty all admin endpoints answer 503, so the server cannot
// be deployed with admin routes left open.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			abort(c, http.StatusServiceUnavailable, "admin endpoints disabled: set server.admin_key in config")
			return
		}
		if c.GetHeader("X-Admin-Key") != adminKey {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Next()
	}
}
