package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

const (
	TaskTypeQuestProgress = "quest:progress"
	TaskTypeQuestReset    = "quest:reset"
	TaskTypeEnergyRegen   = "energy:regen"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// QuestProgressPayload carries one player action toward open quests.
type QuestProgressPayload struct {
	UserID int64            `json:"user_id"`
	Kind   domain.QuestKind `json:"kind"`
	Delta  int64            `json:"delta"`
}

func NewQuestProgressTask(userID int64, kind domain.QuestKind, delta int64) (*asynq.Task, error) {
	payload, err := json.Marshal(QuestProgressPayload{UserID: userID, Kind: kind, Delta: delta})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeQuestProgress, payload, asynq.Queue(QueueDefault)), nil
}

func NewQuestResetTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeQuestReset, nil, asynq.Queue(QueueLow)), nil
}

func NewEnergyRegenTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeEnergyRegen, nil, asynq.Queue(QueueLow)), nil
}
