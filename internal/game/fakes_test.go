package game

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

type fakeAccounts struct {
	accounts map[int64]*domain.PlayerAccount
}

func newFakeAccounts(accs ...*domain.PlayerAccount) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[int64]*domain.PlayerAccount)}
	for _, acc := range accs {
		f.accounts[acc.UserID] = acc
	}
	return f
}

func (f *fakeAccounts) FindByID(_ context.Context, userID int64) (*domain.PlayerAccount, error) {
	acc, ok := f.accounts[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return acc, nil
}

func (f *fakeAccounts) Create(_ context.Context, acc *domain.PlayerAccount) error {
	f.accounts[acc.UserID] = acc
	return nil
}

func (f *fakeAccounts) Update(_ context.Context, userID int64, fn func(acc *domain.PlayerAccount) error) (*domain.PlayerAccount, error) {
	acc, ok := f.accounts[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}

	// Mimic the transactional repository: a failed fn leaves the row as it was.
	snapshot := *acc
	if err := fn(acc); err != nil {
		*acc = snapshot
		return nil, err
	}
	return acc, nil
}

func (f *fakeAccounts) TopByCoins(_ context.Context, limit int) ([]*domain.PlayerAccount, error) {
	all := make([]*domain.PlayerAccount, 0, len(f.accounts))
	for _, acc := range f.accounts {
		all = append(all, acc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Coins > all[j].Coins })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeAccounts) RegenerateEnergy(_ context.Context, amount int) (int64, error) {
	var touched int64
	for _, acc := range f.accounts {
		if acc.Energy >= acc.MaxEnergy {
			continue
		}
		acc.Energy += amount
		if acc.Energy > acc.MaxEnergy {
			acc.Energy = acc.MaxEnergy
		}
		touched++
	}
	return touched, nil
}

func (f *fakeAccounts) RegenerateElectricity(_ context.Context, amount int) (int64, error) {
	var touched int64
	for _, acc := range f.accounts {
		if acc.Electricity >= acc.MaxElectricity {
			continue
		}
		acc.Electricity += amount
		if acc.Electricity > acc.MaxElectricity {
			acc.Electricity = acc.MaxElectricity
		}
		touched++
	}
	return touched, nil
}

type fakeItems struct {
	items map[int64]*domain.ItemDefinition
}

func newFakeItems(items ...*domain.ItemDefinition) *fakeItems {
	f := &fakeItems{items: make(map[int64]*domain.ItemDefinition)}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeItems) FindByID(_ context.Context, itemID int64) (*domain.ItemDefinition, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

func (f *fakeItems) FindByIDs(_ context.Context, itemIDs []int64) ([]*domain.ItemDefinition, error) {
	var found []*domain.ItemDefinition
	for _, id := range itemIDs {
		if item, ok := f.items[id]; ok {
			found = append(found, item)
		}
	}
	return found, nil
}

func (f *fakeItems) ListAll(_ context.Context) ([]*domain.ItemDefinition, error) {
	all := make([]*domain.ItemDefinition, 0, len(f.items))
	for _, item := range f.items {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (f *fakeItems) ListByType(_ context.Context, itemType domain.ItemType) ([]*domain.ItemDefinition, error) {
	var filtered []*domain.ItemDefinition
	for _, item := range f.items {
		if item.Type == itemType {
			filtered = append(filtered, item)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return filtered, nil
}

func (f *fakeItems) DecrementStock(_ context.Context, itemID int64, quantity int) error {
	item, ok := f.items[itemID]
	if !ok || (item.Stock != domain.UnlimitedStock && item.Stock < quantity) {
		return sql.ErrNoRows
	}
	if item.Stock != domain.UnlimitedStock {
		item.Stock -= quantity
	}
	return nil
}

type stackKey struct {
	userID int64
	itemID int64
}

type fakeInventory struct {
	items  *fakeItems
	stacks map[stackKey]*domain.OwnedStack
	nextID int64
}

func newFakeInventory(items *fakeItems) *fakeInventory {
	return &fakeInventory{items: items, stacks: make(map[stackKey]*domain.OwnedStack)}
}

func (f *fakeInventory) ListByUser(_ context.Context, userID int64) ([]*domain.OwnedStack, error) {
	var stacks []*domain.OwnedStack
	for key, stack := range f.stacks {
		if key.userID == userID {
			stacks = append(stacks, stack)
		}
	}
	sort.Slice(stacks, func(i, j int) bool { return stacks[i].ID < stacks[j].ID })
	return stacks, nil
}

func (f *fakeInventory) FindStack(_ context.Context, userID, itemID int64) (*domain.OwnedStack, error) {
	stack, ok := f.stacks[stackKey{userID, itemID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stack, nil
}

func (f *fakeInventory) AddQuantity(_ context.Context, userID, itemID int64, quantity int) error {
	key := stackKey{userID, itemID}
	if stack, ok := f.stacks[key]; ok {
		stack.Quantity += quantity
		return nil
	}

	f.nextID++
	f.stacks[key] = &domain.OwnedStack{
		ID:        f.nextID,
		UserID:    userID,
		ItemID:    itemID,
		Quantity:  quantity,
		Item:      f.items.items[itemID],
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (f *fakeInventory) RemoveQuantity(_ context.Context, userID, itemID int64, quantity int) error {
	key := stackKey{userID, itemID}
	stack, ok := f.stacks[key]
	if !ok || stack.Quantity < quantity {
		return sql.ErrNoRows
	}

	stack.Quantity -= quantity
	if stack.Quantity == 0 {
		delete(f.stacks, key)
	}
	return nil
}

func (f *fakeInventory) SetActive(_ context.Context, stackID int64, active bool) error {
	for _, stack := range f.stacks {
		if stack.ID == stackID {
			stack.Active = active
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeMarket struct {
	listings   map[int64]*domain.MarketListing
	nextID     int64
	failDelete bool
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{listings: make(map[int64]*domain.MarketListing)}
}

func (f *fakeMarket) Create(_ context.Context, listing *domain.MarketListing) error {
	f.nextID++
	listing.ID = f.nextID
	listing.CreatedAt = time.Now().UTC()
	stored := *listing
	f.listings[listing.ID] = &stored
	return nil
}

func (f *fakeMarket) FindByID(_ context.Context, listingID int64) (*domain.MarketListing, error) {
	listing, ok := f.listings[listingID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *listing
	return &found, nil
}

func (f *fakeMarket) ListOpen(_ context.Context, limit, offset int) ([]*domain.MarketListing, error) {
	all := make([]*domain.MarketListing, 0, len(f.listings))
	for _, listing := range f.listings {
		all = append(all, listing)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeMarket) ListBySeller(_ context.Context, sellerID int64) ([]*domain.MarketListing, error) {
	var mine []*domain.MarketListing
	for _, listing := range f.listings {
		if listing.SellerID == sellerID {
			mine = append(mine, listing)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })
	return mine, nil
}

func (f *fakeMarket) Delete(_ context.Context, listingID int64) error {
	if f.failDelete {
		return sql.ErrNoRows
	}
	if _, ok := f.listings[listingID]; !ok {
		return sql.ErrNoRows
	}
	delete(f.listings, listingID)
	return nil
}

type fakeQuests struct {
	seeded []int64
}

func (f *fakeQuests) ListByUser(context.Context, int64) ([]*domain.Quest, error) {
	return nil, nil
}

func (f *fakeQuests) ListActiveByKind(context.Context, int64, domain.QuestKind) ([]*domain.Quest, error) {
	return nil, nil
}

func (f *fakeQuests) AddProgress(context.Context, int64, domain.QuestKind, int64) ([]*domain.Quest, error) {
	return nil, nil
}

func (f *fakeQuests) MarkCompleted(context.Context, int64) error { return nil }

func (f *fakeQuests) SeedDefaults(_ context.Context, userID int64) error {
	f.seeded = append(f.seeded, userID)
	return nil
}

func (f *fakeQuests) ResetDaily(context.Context) (int64, error) { return 0, nil }

type enqueuedTask struct {
	taskType string
	payload  []byte
}

type fakeAchievements struct {
	unlocked map[int64][]*domain.PlayerAchievement
}

func newFakeAchievements() *fakeAchievements {
	return &fakeAchievements{unlocked: make(map[int64][]*domain.PlayerAchievement)}
}

func (f *fakeAchievements) ListUnlocked(_ context.Context, userID int64) ([]*domain.PlayerAchievement, error) {
	return f.unlocked[userID], nil
}

func (f *fakeAchievements) Unlock(_ context.Context, userID int64, code string) (bool, error) {
	for _, pa := range f.unlocked[userID] {
		if pa.Code == code {
			return false, nil
		}
	}
	f.unlocked[userID] = append(f.unlocked[userID], &domain.PlayerAchievement{
		ID: int64(len(f.unlocked[userID]) + 1), UserID: userID, Code: code, AchievedAt: time.Now().UTC(),
	})
	return true, nil
}

type fakeQueue struct {
	tasks    []enqueuedTask
	failures int
	attempts int
}

func (f *fakeQueue) Enqueue(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("redis connection refused")
	}
	f.tasks = append(f.tasks, enqueuedTask{taskType: task.Type(), payload: task.Payload()})
	return &asynq.TaskInfo{}, nil
}

func (f *fakeQueue) Close() error { return nil }
