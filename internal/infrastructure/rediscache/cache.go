// Package rediscache caches rendered account-list views in Redis so the
// frequent balance-screen reads skip the database.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"

	"ledgerlink/internal/domain/account"
)

// ErrCacheMiss is returned when no cached view exists for the user.
var ErrCacheMiss = redis.Nil

// AccountCache stores per-user account lists under a TTL. Entries are
// invalidated eagerly when a link or sync changes the underlying data;
// the TTL is only a backstop.
type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAccountCache connects to Redis and verifies the connection.
func NewAccountCache(addr, password string, db int, ttl time.Duration) (*AccountCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping().Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &AccountCache{client: client, ttl: ttl}, nil
}

func accountsKey(userID int64) string {
	return fmt.Sprintf("accounts:user:%d", userID)
}

// GetAccounts returns the cached account list for a user, or
// ErrCacheMiss when none is stored.
func (c *AccountCache) GetAccounts(ctx context.Context, userID int64) ([]*account.Account, error) {
	payload, err := c.client.Get(accountsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var accounts []*account.Account
	if err := json.Unmarshal([]byte(payload), &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode cached accounts: %w", err)
	}
	return accounts, nil
}

// SetAccounts stores the account list for a user.
func (c *AccountCache) SetAccounts(ctx context.Context, userID int64, accounts []*account.Account) error {
	payload, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to encode accounts for cache: %w", err)
	}

	if err := c.client.Set(accountsKey(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache accounts: %w", err)
	}
	return nil
}

// InvalidateAccounts drops the cached view for a user.
func (c *AccountCache) InvalidateAccounts(ctx context.Context, userID int64) error {
	if err := c.client.Del(accountsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate account cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *AccountCache) Close() error {
	return c.client.Close()
}
