package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Enqueuer is the task-producing side of the queue. Services depend on
// the interface so tests can record enqueued tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error
}

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(redisAddr string) (Enqueuer, func() error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	return &asynqEnqueuer{client: client}, client.Close
}

func (e *asynqEnqueuer) Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	if _, err := e.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
