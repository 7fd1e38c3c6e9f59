package main

import (
	"grocery-backend/internal/config"
	"grocery-backend/internal/infrastructure/queue"
)

func newScheduler(cfg *config.Config) *queue.Scheduler {
	return queue.NewScheduler(cfg.Redis.Addr, cfg.Backup.Schedule)
}
