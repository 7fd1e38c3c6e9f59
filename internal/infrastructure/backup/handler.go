package backup

import (
	"context"

	"github.com/hibiken/asynq"
)

// Handler runs the scheduled backup task on the worker.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	return h.service.Run(ctx)
}
