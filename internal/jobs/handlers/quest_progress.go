// Package handlers contains asynq task handlers for background game work.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nanocoin-game/nanocoin-bot/internal/jobs"
	"github.com/nanocoin-game/nanocoin-bot/internal/quests"
)

// QuestProgressHandler applies queued player-action deltas to quest
// counters and settles completed quests.
type QuestProgressHandler struct {
	quests *quests.Service
	log    *slog.Logger
}

func NewQuestProgressHandler(quests *quests.Service, log *slog.Logger) *QuestProgressHandler {
	return &QuestProgressHandler{quests: quests, log: log}
}

func (h *QuestProgressHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload jobs.QuestProgressPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A malformed payload will never parse; retrying is pointless.
		return fmt.Errorf("unmarshal quest progress payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.quests.Advance(ctx, payload.UserID, payload.Kind, payload.Delta); err != nil {
		h.log.Error("quest progress task failed",
			slog.Int64("user_id", payload.UserID), slog.String("kind", string(payload.Kind)), slog.Any("error", err))
		return err
	}

	return nil
}
