// Package cache provides an optional Redis read cache for memo→campaign
// resolution on the deposit hot path. Campaign records are immutable
// after creation, so an entry stays valid until the campaign is deleted.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/n1platform/stakevault/internal/model"
)

// CampaignCache caches campaign records keyed by memo. A nil
// *CampaignCache is a valid no-op cache.
type CampaignCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*CampaignCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &CampaignCache{rdb: rdb, ttl: ttl}, nil
}

func memoKey(memo int64) string {
	return fmt.Sprintf("campaign:memo:%d", memo)
}

// GetByMemo returns the cached campaign for a memo, or (nil, false) on a
// miss. Cache failures are treated as misses.
func (c *CampaignCache) GetByMemo(ctx context.Context, memo int64) (*model.Campaign, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, memoKey(memo)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("campaign cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}
	var campaign model.Campaign
	if err := json.Unmarshal(data, &campaign); err != nil {
		return nil, false
	}
	return &campaign, true
}

// SetByMemo stores a campaign under its memo, best effort.
func (c *CampaignCache) SetByMemo(ctx context.Context, campaign *model.Campaign) {
	if c == nil {
		return
	}
	data, err := json.Marshal(campaign)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, memoKey(campaign.Memo), data, c.ttl).Err(); err != nil {
		slog.Debug("campaign cache write failed", slog.String("error", err.Error()))
	}
}

// Invalidate drops the entry for a memo. Called after campaign deletion.
func (c *CampaignCache) Invalidate(ctx context.Context, memo int64) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, memoKey(memo)).Err(); err != nil {
		slog.Debug("campaign cache invalidation failed", slog.String("error", err.Error()))
	}
}

// Close releases the Redis connection.
func (c *CampaignCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
