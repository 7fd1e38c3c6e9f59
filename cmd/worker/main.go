package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"grocery-backend/internal/config"
	"grocery-backend/internal/infrastructure/backup"
	"grocery-backend/internal/infrastructure/email"
	"grocery-backend/internal/infrastructure/storage"
	"grocery-backend/pkg/logger"
)

// The worker processes queued tasks (welcome email, orphan asset
// cleanup) and runs the scheduled database backup.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.App.Env)

	ctx := context.Background()
	store, err := storage.NewMinioStore(ctx, cfg.Storage)
	if err != nil {
		logger.Error("worker bootstrap failed", err)
		os.Exit(1)
	}

	mailer := email.NewSMTPMailer(cfg.SMTP)
	backupSvc := backup.NewService(cfg.Database, cfg.Backup, store)

	server := newWorkerServer(cfg.Redis.Addr)
	mux := newTaskMux(mailer, store, backupSvc)

	go func() {
		if err := server.Run(mux); err != nil {
			logger.Error("worker stopped", err)
			os.Exit(1)
		}
	}()

	scheduler := newScheduler(cfg)
	if cfg.Backup.Enabled {
		if err := scheduler.RegisterJobs(); err != nil {
			logger.Error("could not register scheduled jobs", err)
			os.Exit(1)
		}
		go func() {
			if err := scheduler.Start(); err != nil {
				logger.Error("scheduler stopped", err)
				os.Exit(1)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down", nil)
	if cfg.Backup.Enabled {
		scheduler.Shutdown()
	}
	server.Shutdown()
}
