package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	OnlineTTL = 90 * time.Second // Match pong timeout
)

// Presence tracks which users hold at least one live websocket connection.
// Each user has a connection counter with a TTL refreshed by pings, so a
// crashed node's users expire on their own.
type Presence struct {
	redis *RedisCache
}

func NewPresence(redis *RedisCache) *Presence {
	return &Presence{redis: redis}
}

func onlineKey(userID string) string {
	return fmt.Sprintf("online:%s", userID)
}

func (p *Presence) Connect(ctx context.Context, userID string) error {
	if p == nil || p.redis == nil {
		return nil
	}
	key := onlineKey(userID)
	if _, err := p.redis.Incr(ctx, key); err != nil {
		return err
	}
	return p.redis.Expire(ctx, key, OnlineTTL)
}

func (p *Presence) Disconnect(ctx context.Context, userID string) error {
	if p == nil || p.redis == nil {
		return nil
	}
	key := onlineKey(userID)
	n, err := p.redis.Decr(ctx, key)
	if err != nil {
		return err
	}
	if n <= 0 {
		return p.redis.Delete(ctx, key)
	}
	return nil
}

// Refresh extends the TTL for a connected user
func (p *Presence) Refresh(ctx context.Context, userID string) error {
	if p == nil || p.redis == nil {
		return nil
	}
	return p.redis.Expire(ctx, onlineKey(userID), OnlineTTL)
}

// OnlineAmong returns the subset of userIDs that are online.
func (p *Presence) OnlineAmong(ctx context.Context, userIDs []string) (map[string]bool, error) {
	online := make(map[string]bool, len(userIDs))
	if p == nil || p.redis == nil || len(userIDs) == 0 {
		return online, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = onlineKey(id)
	}
	exists, err := p.redis.MExists(ctx, keys)
	if err != nil {
		return online, err
	}
	for i, id := range userIDs {
		if exists[i] {
			online[id] = true
		}
	}
	return online, nil
}
