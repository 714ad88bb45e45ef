package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/kasuganosora/campuswellness/api"
	"github.com/kasuganosora/campuswellness/audit"
	"github.com/kasuganosora/campuswellness/cache"
	"github.com/kasuganosora/campuswellness/config"
	dbadapter "github.com/kasuganosora/campuswellness/db"
	mw "github.com/kasuganosora/campuswellness/middleware"
	"github.com/kasuganosora/campuswellness/model"
	"github.com/kasuganosora/campuswellness/scheduler"
	"github.com/kasuganosora/campuswellness/wellness/challenge"
	"github.com/kasuganosora/campuswellness/wellness/insights"
	"github.com/kasuganosora/campuswellness/wellness/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		log.Fatalf("config: security.jwt_secret must be set")
	}
	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	if cfg.Database.Seed {
		if err := model.Seed(db); err != nil {
			log.Fatalf("db seed: %v", err)
		}
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer c.Close()
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)

	// ---- Metrics ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := mw.NewHTTPMetrics(reg)

	// ---- Services ----
	catalog := challenge.NewCatalog(db, c, cfg.Cache.CatalogTTL, logger)
	challengeSvc := challenge.NewService(db, logger)
	insightSvc := insights.NewService(db, challengeSvc)
	directory := resource.NewDirectory(db, c, cfg.Cache.CatalogTTL, logger)

	// ---- Scheduler ----
	owner, _ := os.Hostname()
	owner = fmt.Sprintf("%s/%s", owner, uuid.NewString())
	sched := scheduler.New(logger, scheduler.WithLocker(c, owner))

	warm := func(ctx context.Context) error { return directory.Warm(ctx) }
	sched.AddDelay("resources_cache_warm_initial", time.Second, warm)
	if cfg.Cache.CatalogTTL > 0 {
		sched.AddTicker("resources_cache_warm", cfg.Cache.CatalogTTL, warm)
	}
	if cfg.Audit.PurgeInterval > 0 {
		sched.AddTicker("audit_purge", cfg.Audit.PurgeInterval, purgeAudit(auditSvc, cfg.Audit.Retention, logger))
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(api.Deps{
		Config:     cfg,
		DB:         db,
		Cache:      c,
		Logger:     logger,
		Auditor:    auditSvc,
		Scheduler:  sched,
		Metrics:    httpMetrics,
		Gatherer:   reg,
		Catalog:    catalog,
		Challenges: challengeSvc,
		Insights:   insightSvc,
		Directory:  directory,
	})

	// ---- CORS ----
	corsOpts := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Admin-Key", "X-Trace-ID"}),
		handlers.ExposedHeaders([]string{"Content-Disposition", "X-Trace-ID"}),
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsOpts = append(corsOpts, handlers.AllowedOrigins(cfg.Server.AllowedOrigins))
	} else {
		logger.Warn("server.allowed_origins is empty; every origin may call the API")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handlers.CORS(corsOpts...)(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// ---- Shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	sched.Stop()
	auditSvc.Stop(ctx)
}

// purgeAudit deletes audit rows older than retention on each run.
func purgeAudit(svc *audit.Service, retention time.Duration, logger *zap.Logger) scheduler.TaskFn {
	return func(ctx context.Context) error {
		n, err := svc.PurgeOlderThan(ctx, time.Now().Add(-retention))
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("audit logs purged", zap.Int64("rows", n))
		}
		return nil
	}
}
