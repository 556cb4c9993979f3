package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/adpilot/internal/analyzer"
	"github.com/ignite/adpilot/internal/api"
	"github.com/ignite/adpilot/internal/cache"
	"github.com/ignite/adpilot/internal/config"
	"github.com/ignite/adpilot/internal/engine"
	"github.com/ignite/adpilot/internal/export"
	"github.com/ignite/adpilot/internal/knowledge"
	"github.com/ignite/adpilot/internal/learning"
	"github.com/ignite/adpilot/internal/pkg/distlock"
	"github.com/ignite/adpilot/internal/repository/postgres"
	"github.com/ignite/adpilot/internal/tracker"
	"github.com/ignite/adpilot/internal/worker"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("[redis] unreachable, continuing without cache: %v", err)
			rdb = nil
		}
	}

	// Repositories
	learningRepo := postgres.NewLearningRepo(db)
	logRepo := postgres.NewRecommendationLogRepo(db)
	metricsRepo := postgres.NewMetricsRepo(db)

	// Core services. The learning store is injected into the knowledge
	// base explicitly; there is no lazy loading between them.
	trk := tracker.New(logRepo)
	store := learning.NewStore(learningRepo, trk)
	trk.SetSuccessRecorder(store)
	kb := knowledge.New(store)

	runner := analyzer.NewRunner(
		analyzer.NewAudienceAnalyzer(metricsRepo),
		analyzer.NewLTVAnalyzer(metricsRepo),
		analyzer.NewFunnelAnalyzer(metricsRepo),
		analyzer.NewCrossChannelAnalyzer(metricsRepo),
		analyzer.NewKeywordAnalyzer(metricsRepo),
		analyzer.NewProductAnalyzer(metricsRepo),
		analyzer.NewCannibalizationAnalyzer(metricsRepo),
		analyzer.NewMultiPeriodAnalyzer(metricsRepo),
	)
	eng := engine.New(kb, runner, metricsRepo, cfg.Engine.LookbackDays)
	respCache := cache.New(rdb, cfg.Engine.CacheTTL())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional derive worker with S3 audit export
	if cfg.Derive.Enabled {
		var exporter *export.Exporter
		if cfg.Export.Enabled {
			exporter, err = export.New(ctx, cfg.Export.S3Region, cfg.Export.S3Bucket, cfg.Export.S3Prefix)
			if err != nil {
				log.Printf("[export] S3 exporter unavailable, derive reports disabled: %v", err)
			}
		}
		lock := distlock.NewLock(rdb, db, "derive-cycle", 30*time.Minute)
		dw := worker.NewDeriveWorker(store, metricsRepo, lock, exporter, cfg.Derive.Interval())
		go dw.Start(ctx)
	}

	server := api.NewServer(eng, trk, store, respCache)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, cfg.Server.Port),
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("[server] listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[server] shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown error: %v", err)
	}
}
