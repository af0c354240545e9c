package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nanocoin-game/nanocoin-bot/internal/quests"
	"github.com/nanocoin-game/nanocoin-bot/internal/repository"
)

// EnergyRegenHandler trickles energy and electricity back to every player
// below the respective cap.
type EnergyRegenHandler struct {
	accounts    repository.AccountRepository
	energy      int
	electricity int
	log         *slog.Logger
}

func NewEnergyRegenHandler(accounts repository.AccountRepository, energy, electricity int, log *slog.Logger) *EnergyRegenHandler {
	return &EnergyRegenHandler{accounts: accounts, energy: energy, electricity: electricity, log: log}
}

func (h *EnergyRegenHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if h.energy > 0 {
		touched, err := h.accounts.RegenerateEnergy(ctx, h.energy)
		if err != nil {
			h.log.Error("energy regen task failed", slog.Any("error", err))
			return err
		}
		h.log.Debug("energy regenerated", slog.Int64("accounts", touched), slog.Int("amount", h.energy))
	}

	if h.electricity > 0 {
		touched, err := h.accounts.RegenerateElectricity(ctx, h.electricity)
		if err != nil {
			h.log.Error("electricity regen task failed", slog.Any("error", err))
			return err
		}
		h.log.Debug("electricity regenerated", slog.Int64("accounts", touched), slog.Int("amount", h.electricity))
	}

	return nil
}

// QuestResetHandler reopens daily quests whose reset window elapsed.
type QuestResetHandler struct {
	quests *quests.Service
	log    *slog.Logger
}

func NewQuestResetHandler(quests *quests.Service, log *slog.Logger) *QuestResetHandler {
	return &QuestResetHandler{quests: quests, log: log}
}

func (h *QuestResetHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	reopened, err := h.quests.ResetDaily(ctx)
	if err != nil {
		h.log.Error("quest reset task failed", slog.Any("error", err))
		return err
	}

	h.log.Info("daily quests reset", slog.Int64("reopened", reopened))
	return nil
}
