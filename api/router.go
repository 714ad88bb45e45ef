package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/campuswellness/api/rest"
	"github.com/kasuganosora/campuswellness/audit"
	"github.com/kasuganosora/campuswellness/cache"
	"github.com/kasuganosora/campuswellness/config"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/scheduler"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
	"github.com/kasuganosora/campuswellness/wellness/insights"
	"github.com/kasuganosora/campuswellness/wellness/resource"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer needs. Metrics, Gatherer and
// Scheduler are optional.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Cache     cache.Cache
	Logger    *zap.Logger
	Auditor   audit.Auditor
	Scheduler *scheduler.Scheduler
	Metrics   *mw.HTTPMetrics
	Gatherer  prometheus.Gatherer

	Catalog    *challenge.Catalog
	Challenges *challenge.Service
	Insights   *insights.Service
	Directory  *resource.Directory
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	sched := d.Scheduler
	if sched == nil {
		sched = scheduler.New(logger)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	if d.Metrics != nil {
		r.Use(mw.Metrics(d.Metrics))
	}
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := apirest.NewAuthHandler(d.DB, d.Cache, cfg.Security, d.Auditor, logger)
	challengeH := apirest.NewChallengeHandler(d.Catalog, d.Challenges, d.Auditor)
	moodH := apirest.NewMoodHandler(d.DB, d.Insights)
	activityH := apirest.NewActivityHandler(d.DB, d.Insights)
	resourceH := apirest.NewResourceHandler(d.Directory)
	statsH := apirest.NewStatsHandler(d.DB, d.Insights, logger)
	adminH := apirest.NewAdminHandler(d.DB, d.Catalog, d.Directory, sched, gatherer, d.Auditor, logger)

	requireAuth := mw.Auth(cfg.Security, d.Cache)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", requireAuth, authH.Logout)
		authG.POST("/refresh", requireAuth, authH.Refresh)
		authG.GET("/me", requireAuth, authH.Me)

		api.GET("/challenges", challengeH.List)
		challengesG := api.Group("/challenges")
		challengesG.Use(requireAuth)
		challengesG.GET("/active", challengeH.Active)
		challengesG.GET("/user", challengeH.Mine)
		challengesG.POST("/join/:challengeId", challengeH.Join)
		challengesG.PUT("/progress/:challengeId", challengeH.UpdateProgress)

		moodG := api.Group("/mood")
		moodG.Use(requireAuth)
		moodG.GET("", moodH.List)
		moodG.POST("", moodH.Create)
		moodG.GET("/weekly", moodH.Weekly)

		activitiesG := api.Group("/activities")
		activitiesG.Use(requireAuth)
		activitiesG.GET("", activityH.List)
		activitiesG.POST("", activityH.Create)
		activitiesG.GET("/summary", activityH.Summary)

		resourcesG := api.Group("/resources")
		resourcesG.Use(requireAuth)
		resourcesG.GET("", resourceH.List)
		resourcesG.GET("/category/:category", resourceH.ByCategory)
		resourcesG.GET("/search", resourceH.Search)

		statsG := api.Group("/stats")
		statsG.Use(requireAuth)
		statsG.GET("", statsH.Stats)
		statsG.GET("/report", statsH.Report)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Server.AdminIPs), apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/metrics/prometheus", adminH.Prometheus())
		adminG.POST("/challenges", adminH.CreateChallenge)
		adminG.POST("/resources", adminH.CreateResource)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	return r
}
