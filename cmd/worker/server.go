package main

import (
	"github.com/hibiken/asynq"

	"grocery-backend/internal/shared"
)

func newWorkerServer(redisAddr string) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				shared.QueueCritical:    6,
				shared.QueueEmail:       3,
				shared.QueueMaintenance: 1,
			},
		},
	)
}
