// Package accountcache provides Redis-backed caching of player accounts
// for read-heavy surfaces like the profile and leaderboard screens.
package accountcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// Cache caches player accounts by Telegram user ID. Every mutation path
// must Invalidate, otherwise the profile screen shows stale balances.
type Cache struct {
	client *redis.Client
}

// NewCache constructs an account cache backed by the provided Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get fetches a cached account if it exists. A nil result with nil error
// means a cache miss.
func (c *Cache) Get(ctx context.Context, userID int64) (*domain.PlayerAccount, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached account: %w", err)
	}

	var acc domain.PlayerAccount
	if err := json.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("decode cached account: %w", err)
	}

	return &acc, nil
}

// Set stores the account in cache for the provided TTL.
func (c *Cache) Set(ctx context.Context, acc *domain.PlayerAccount, ttl time.Duration) error {
	if c == nil || c.client == nil || acc == nil {
		return nil
	}

	payload, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode account for cache: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(acc.UserID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set cached account: %w", err)
	}

	return nil
}

// Invalidate removes the cached account entry if it exists.
func (c *Cache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete cached account: %w", err)
	}

	return nil
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("player:profile:%d", userID)
}
