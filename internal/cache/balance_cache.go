package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/camilozg/lending-engine/internal/domain"
)

// BalanceCache caches customer balance projections in Redis. Writers
// invalidate on any mutation of the customer's loan set, so a hit is
// never staler than the TTL and usually not stale at all.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

func balanceKey(externalID string) string {
	return "balance:" + externalID
}

// Get returns the cached balance, or nil on a miss.
func (c *BalanceCache) Get(ctx context.Context, externalID string) (*domain.CustomerBalance, error) {
	raw, err := c.client.Get(ctx, balanceKey(externalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var balance domain.CustomerBalance
	if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, err
	}

	return &balance, nil
}

// Set stores the balance under the configured TTL.
func (c *BalanceCache) Set(ctx context.Context, externalID string, balance *domain.CustomerBalance) error {
	raw, err := json.Marshal(balance)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, balanceKey(externalID), raw, c.ttl).Err()
}

// Invalidate drops the cached balance for a customer.
func (c *BalanceCache) Invalidate(ctx context.Context, externalID string) error {
	return c.client.Del(ctx, balanceKey(externalID)).Err()
}
