package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"grocery-backend/internal/infrastructure/storage"
	"grocery-backend/internal/shared"
	"grocery-backend/pkg/logger"
)

// CleanupAssetHandler deletes remote assets orphaned by rolled-back
// product writes. Best effort: asynq retries on failure.
type CleanupAssetHandler struct {
	store storage.AssetStore
}

func NewCleanupAssetHandler(store storage.AssetStore) *CleanupAssetHandler {
	return &CleanupAssetHandler{store: store}
}

func (h *CleanupAssetHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.AssetCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal asset cleanup payload: %w", err)
	}

	if err := h.store.Delete(ctx, payload.PublicID); err != nil {
		return err
	}

	logger.Info("orphaned asset removed", map[string]interface{}{
		"public_id": payload.PublicID,
		"reason":    payload.Reason,
	})
	return nil
}
