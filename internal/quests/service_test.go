package quests

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
)

type stubQuests struct {
	crossed     []*domain.Quest
	addCalls    int
	completed   []int64
	completeErr error
	resetCount  int64
}

func (s *stubQuests) ListByUser(context.Context, int64) ([]*domain.Quest, error) { return nil, nil }

func (s *stubQuests) ListActiveByKind(context.Context, int64, domain.QuestKind) ([]*domain.Quest, error) {
	return nil, nil
}

func (s *stubQuests) AddProgress(_ context.Context, _ int64, _ domain.QuestKind, _ int64) ([]*domain.Quest, error) {
	s.addCalls++
	return s.crossed, nil
}

func (s *stubQuests) MarkCompleted(_ context.Context, questID int64) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completed = append(s.completed, questID)
	return nil
}

func (s *stubQuests) SeedDefaults(context.Context, int64) error { return nil }

func (s *stubQuests) ResetDaily(context.Context) (int64, error) { return s.resetCount, nil }

type stubAccounts struct {
	account *domain.PlayerAccount
}

func (s *stubAccounts) FindByID(context.Context, int64) (*domain.PlayerAccount, error) {
	return s.account, nil
}

func (s *stubAccounts) Create(context.Context, *domain.PlayerAccount) error { return nil }

func (s *stubAccounts) Update(_ context.Context, _ int64, fn func(acc *domain.PlayerAccount) error) (*domain.PlayerAccount, error) {
	if err := fn(s.account); err != nil {
		return nil, err
	}
	return s.account, nil
}

func (s *stubAccounts) TopByCoins(context.Context, int) ([]*domain.PlayerAccount, error) {
	return nil, nil
}

func (s *stubAccounts) RegenerateEnergy(context.Context, int) (int64, error) { return 0, nil }

func (s *stubAccounts) RegenerateElectricity(context.Context, int) (int64, error) { return 0, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine() func() *economy.Engine {
	engine := economy.New(economy.DefaultConfig(), nil, nil)
	return func() *economy.Engine { return engine }
}

func TestAdvancePaysCrossedQuests(t *testing.T) {
	acc := domain.NewPlayerAccount(1, "tester", "Tester", 1000, 5000, time.Now().UTC())
	quests := &stubQuests{
		crossed: []*domain.Quest{
			{ID: 7, UserID: 1, Code: "daily_clicks", RewardCoins: 500, RewardDiamonds: 2, RewardXP: 50},
		},
	}

	svc := NewService(quests, &stubAccounts{account: acc}, testEngine(), testLogger())

	require.NoError(t, svc.Advance(context.Background(), 1, domain.QuestKindClick, 1))

	assert.Equal(t, []int64{7}, quests.completed)
	assert.Equal(t, int64(500), acc.Coins)
	assert.Equal(t, int64(2), acc.Diamonds)
	assert.Equal(t, int64(50), acc.ClickXP)
}

func TestQuestXPRewardLevelsUp(t *testing.T) {
	acc := domain.NewPlayerAccount(1, "tester", "Tester", 1000, 5000, time.Now().UTC())
	quests := &stubQuests{
		crossed: []*domain.Quest{
			{ID: 9, UserID: 1, Code: "click_1k", RewardCoins: 5000, RewardXP: 200},
		},
	}

	svc := NewService(quests, &stubAccounts{account: acc}, testEngine(), testLogger())

	require.NoError(t, svc.Advance(context.Background(), 1, domain.QuestKindClick, 1))

	// 200 XP crosses the level 1 threshold of 100. The engine grants the
	// level and resets the counter, same as a click would.
	assert.Equal(t, 2, acc.ClickLevel)
	assert.Zero(t, acc.ClickXP)
}

func TestAdvanceSkipsAlreadySettledQuests(t *testing.T) {
	acc := domain.NewPlayerAccount(1, "tester", "Tester", 1000, 5000, time.Now().UTC())
	quests := &stubQuests{
		crossed: []*domain.Quest{
			{ID: 7, UserID: 1, Code: "daily_clicks", RewardCoins: 500},
		},
		completeErr: sql.ErrNoRows,
	}

	svc := NewService(quests, &stubAccounts{account: acc}, testEngine(), testLogger())

	require.NoError(t, svc.Advance(context.Background(), 1, domain.QuestKindClick, 1))
	assert.Zero(t, acc.Coins, "a quest settled elsewhere must not pay twice")
}

func TestAdvanceIgnoresInvalidInput(t *testing.T) {
	quests := &stubQuests{}
	svc := NewService(quests, &stubAccounts{}, testEngine(), testLogger())

	require.NoError(t, svc.Advance(context.Background(), 1, domain.QuestKind("BOGUS"), 1))
	require.NoError(t, svc.Advance(context.Background(), 1, domain.QuestKindClick, 0))
	assert.Zero(t, quests.addCalls)
}

func TestResetDaily(t *testing.T) {
	quests := &stubQuests{resetCount: 3}
	svc := NewService(quests, &stubAccounts{}, testEngine(), testLogger())

	reopened, err := svc.ResetDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), reopened)
}
