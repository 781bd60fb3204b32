package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"escola/internal/api"
	"escola/internal/archive"
	"escola/internal/config"
	"escola/internal/httpmiddleware"
	"escola/internal/metrics"
	"escola/internal/notify"
	"escola/internal/queue"
	"escola/internal/store"
	"escola/internal/students"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	log.Printf("store backend: %s", cfg.StoreBackend)

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	q, closeQueue, err := queue.Open(cfg, redisClient.Client)
	if err != nil {
		log.Printf("warning: notification queue disabled: %v", err)
	}
	defer closeQueue()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	feed := notify.NewFeed(cfg.FeedSize)
	notifiers := notify.Fanout{feed}
	if q != nil && !cfg.LocalQueue() {
		notifiers = append(notifiers, notify.NewPublisher(q))
	}

	reg := students.NewRegistry(m.Instrument(backend.Table), notifiers, backend.Demo)
	if err := reg.List(ctx); err != nil {
		log.Printf("warning: initial load failed: %v", err)
	}

	var arch api.Archiver
	if cfg.CloudinaryURL != "" {
		a, err := archive.New(cfg.CloudinaryURL, cfg.CloudinaryDir)
		if err != nil {
			log.Printf("warning: export archive disabled: %v", err)
		} else {
			arch = a
			log.Println("Cloudinary export archive configured")
		}
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_URL not set)")
	}

	h := api.NewHandler(reg, feed, arch, m)
	h.AddCheck("db", backend.Health)
	if cfg.QueueBackend == "redis" {
		h.AddCheck("redis", redisClient)
	}

	limiter := httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	sweep := cfg.RateLimitSweep
	if sweep <= 0 {
		sweep = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Sweep(sweep)
			case <-ctx.Done():
				return
			}
		}
	}()

	r := api.NewRouter(h, api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter.GinMiddleware(),
		Gatherer:    promReg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
