package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"grocery-backend/internal/shared"
	"grocery-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cronSpec  string
}

func NewScheduler(redisAddr, backupCronSpec string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cronSpec:  backupCronSpec,
	}
}

// RegisterJobs wires every recurring task. Currently only the nightly
// database backup.
func (s *Scheduler) RegisterJobs() error {
	return s.registerDatabaseBackupJob()
}

func (s *Scheduler) registerDatabaseBackupJob() error {
	payload, err := json.Marshal(shared.DatabaseBackupPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeDatabaseBackup, payload)

	_, err = s.scheduler.Register(
		s.cronSpec,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(15*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register database backup job", err)
		return err
	}

	logger.Info("registered database backup job", map[string]interface{}{
		"cron": s.cronSpec,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
