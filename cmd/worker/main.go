package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"escola/internal/archive"
	"escola/internal/config"
	"escola/internal/metrics"
	"escola/internal/notify"
	"escola/internal/queue"
	"escola/internal/store"
	"escola/internal/students"
)

// Worker relays queued notifications to the webhook and archives CSV exports
// on a schedule.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	warnings, err := checkConfig(cfg)
	if err != nil {
		log.Fatalf("invalid worker config: %v", err)
	}
	for _, w := range warnings {
		log.Printf("WARNING: %s", w)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	q, closeQueue, err := queue.Open(cfg, redisClient.Client)
	if err != nil {
		log.Fatalf("queue init failed: %v", err)
	}
	defer closeQueue()

	m := metrics.New(prometheus.DefaultRegisterer)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+cfg.WorkerPort, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	relay := notify.NewRelay(cfg.WebhookURL, cfg.NotifySkip, config.NewCircuitBreaker("Webhook"))
	if err := relay.Health(ctx); err != nil {
		log.Printf("WARNING: webhook not available: %v", err)
	}

	if cfg.ArchiveCron != "" {
		stop, err := scheduleArchive(ctx, cfg, m)
		if err != nil {
			log.Fatalf("archive schedule failed: %v", err)
		}
		defer stop()
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for notifications...")
	for msg := range messages {
		n, err := notify.Decode(msg)
		if err != nil {
			log.Printf("skipping message: %v", err)
			m.Relayed.WithLabelValues("invalid").Inc()
			continue
		}
		sendCtx, cancelSend := context.WithTimeout(ctx, 15*time.Second)
		err = relay.Send(sendCtx, n)
		cancelSend()
		if err != nil {
			log.Printf("relay %q failed: %v", n.Title, err)
			m.Relayed.WithLabelValues("error").Inc()
			continue
		}
		m.Relayed.WithLabelValues("ok").Inc()
	}

	log.Println("worker stopped")
}

// checkConfig rejects settings the worker cannot honour and lists the ones
// that make it idle.
func checkConfig(cfg config.App) ([]string, error) {
	if cfg.ArchiveCron != "" && cfg.Demo() {
		return nil, errors.New("ARCHIVE_CRON needs a shared STORE_BACKEND; the memory store only holds this process's demo data")
	}
	var warnings []string
	if cfg.LocalQueue() {
		warnings = append(warnings, "QUEUE_BACKEND is memory: no other process can publish to this worker, set redis or rabbitmq")
	}
	return warnings, nil
}

// scheduleArchive registers the export archive job and returns a stop function.
func scheduleArchive(ctx context.Context, cfg config.App, m *metrics.Collectors) (func(), error) {
	if cfg.CloudinaryURL == "" {
		log.Println("ARCHIVE_CRON set but CLOUDINARY_URL missing, archive disabled")
		return func() {}, nil
	}
	arch, err := archive.New(cfg.CloudinaryURL, cfg.CloudinaryDir)
	if err != nil {
		return nil, err
	}
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	reg := students.NewRegistry(m.Instrument(backend.Table), nil, false)

	c := cron.New()
	_, err = c.AddFunc(cfg.ArchiveCron, func() {
		if err := reg.List(ctx); err != nil {
			log.Printf("archive: load failed: %v", err)
			return
		}
		exp := reg.ExportCSV(ctx)
		res, err := arch.Store(ctx, exp.FileName, exp.Data)
		if err != nil {
			log.Printf("archive: upload failed: %v", err)
			return
		}
		m.Exports.Inc()
		log.Printf("archive: stored %s (%d bytes)", res.SecureURL, res.Bytes)
	})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	c.Start()
	log.Printf("export archive scheduled: %s", cfg.ArchiveCron)

	return func() {
		<-c.Stop().Done()
		_ = backend.Close()
	}, nil
}
