package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/config"
	v1 "github.com/arogyanet/hospital-registry/internal/handler/v1"
	"github.com/arogyanet/hospital-registry/internal/notify"
	"github.com/arogyanet/hospital-registry/internal/repository"
	"github.com/arogyanet/hospital-registry/internal/service"
	"github.com/arogyanet/hospital-registry/pkg/auth"
	"github.com/arogyanet/hospital-registry/pkg/database"
	"github.com/arogyanet/hospital-registry/pkg/logger"
	"github.com/arogyanet/hospital-registry/pkg/metrics"
	"github.com/arogyanet/hospital-registry/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		zlog.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	collector := metrics.NewCollector("hospital_registry")

	sqlDB, err := db.DB()
	if err != nil {
		zlog.Fatal("failed to access connection pool", zap.Error(err))
	}
	statsCtx, stopStats := context.WithCancel(context.Background())
	go database.CollectStats(statsCtx, sqlDB.Stats, collector.DBConnections, 15*time.Second)

	var publisher notify.Publisher = notify.NopPublisher{}
	var dispatcher *notify.Dispatcher
	if cfg.Notifier.BaseURL != "" {
		dispatcher = notify.NewDispatcher(cfg.Notifier, cfg.JWT.ServiceKey, collector, zlog)
		publisher = dispatcher
	} else {
		zlog.Warn("NOTIFICATION_SERVICE_URL not set; event dispatch disabled")
	}

	hospitalRepo := repository.NewHospitalRepo(db)
	hospitalSvc := service.NewHospitalService(hospitalRepo, publisher, zlog)
	authManager := auth.NewManager(cfg.JWT)

	router := v1.NewRouter(cfg, hospitalSvc, authManager, collector, zlog)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info("server starting",
			zap.String("address", cfg.Server.Address()),
			zap.String("environment", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}
	stopStats()
	if dispatcher != nil {
		dispatcher.Shutdown()
	}
	if err := tp.Shutdown(ctx); err != nil {
		zlog.Error("tracer shutdown error", zap.Error(err))
	}

	zlog.Info("server exited")
}
