package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	appinspection "github.com/bryanwahyu/inspekta/internal/application/inspection"
	"github.com/bryanwahyu/inspekta/internal/bootstrap"
	"github.com/bryanwahyu/inspekta/internal/config"
	"github.com/bryanwahyu/inspekta/internal/infra/cache"
	"github.com/bryanwahyu/inspekta/internal/infra/httpserver"
	"github.com/bryanwahyu/inspekta/internal/middleware"
	"github.com/bryanwahyu/inspekta/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load(bootstrap.ConfigPath(os.Getenv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// connect DB (mysql | postgres)
	repos, err := bootstrap.OpenRepositories(ctx, cfg)
	if err != nil {
		log.Fatal("database init error", "error", err)
	}
	defer repos.Close()
	if repos.Reports == nil {
		log.Warn("no database driver configured; report lookups will return 404")
	}

	// init minio / local store
	store, err := bootstrap.OpenArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatal("artifact store init error", "error", err)
	}

	svc := &appinspection.Service{
		Artifacts: store,
		Reports:   repos.Reports,
		Failures:  repos.Failures,
		Log:       log.With("component", "reports"),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checks := map[string]middleware.HealthChecker{}
	if repos.DB != nil {
		checks["database"] = &middleware.DatabaseHealthChecker{DB: repos.DB}
	}
	if analysisCache, closer, err := cache.Open(cfg.Cache.Driver, cfg.Cache.Dir, cfg.Cache.Path, cfg.Cache.RedisAddr); err == nil {
		defer closer.Close()
		checks["cache"] = &middleware.CacheHealthChecker{Cache: analysisCache}
	} else {
		log.Warn("analysis cache unavailable, skipping health check", "error", err)
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	defer limiter.Close()

	handler := httpserver.NewRouter(svc, httpserver.Options{
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Limiter:        limiter,
		Health:         checks,
		Registry:       reg,
		Log:            log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", "error", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
