package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"grocery-backend/internal/infrastructure/email"
	"grocery-backend/internal/shared"
	"grocery-backend/pkg/logger"
)

type WelcomeEmailHandler struct {
	mailer email.Mailer
}

func NewWelcomeEmailHandler(mailer email.Mailer) *WelcomeEmailHandler {
	return &WelcomeEmailHandler{mailer: mailer}
}

func (h *WelcomeEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal welcome email payload: %w", err)
	}

	body := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to the grocery store. Your account is ready.</p>", payload.Name)
	if err := h.mailer.Send(payload.Email, "Welcome!", body); err != nil {
		return err
	}

	logger.Info("welcome email processed", map[string]interface{}{"email": payload.Email})
	return nil
}
