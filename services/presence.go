package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"ripple/chat-server/utils"
)

const (
	lastSeenKeyPrefix = "presence:last_seen:"
	onlineSetKey      = "online_users"
)

// PresenceTracker mirrors connect/disconnect events into Redis so the REST
// API can report last-seen timestamps. Everything here is best-effort: the
// in-process registry stays authoritative for who is online, and a Redis
// outage only degrades last-seen data.
type PresenceTracker struct {
	redis  *redis.Client
	logger *utils.Logger
}

func NewPresenceTracker(redisClient *redis.Client, logger *utils.Logger) *PresenceTracker {
	return &PresenceTracker{
		redis:  redisClient,
		logger: logger,
	}
}

// MarkOnline records that the user connected.
func (p *PresenceTracker) MarkOnline(ctx context.Context, userID string) {
	pipe := p.redis.Pipeline()
	pipe.SAdd(ctx, onlineSetKey, userID)
	pipe.Set(ctx, lastSeenKeyPrefix+userID, time.Now().UTC().Format(time.RFC3339), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Warn("failed to record presence", "userId", userID, "error", err)
	}
}

// MarkOffline records that the user's last connection went away.
func (p *PresenceTracker) MarkOffline(ctx context.Context, userID string) {
	pipe := p.redis.Pipeline()
	pipe.SRem(ctx, onlineSetKey, userID)
	pipe.Set(ctx, lastSeenKeyPrefix+userID, time.Now().UTC().Format(time.RFC3339), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Warn("failed to record presence", "userId", userID, "error", err)
	}
}

// LastSeen returns the recorded last-seen time for the user, if any.
func (p *PresenceTracker) LastSeen(ctx context.Context, userID string) (time.Time, bool) {
	value, err := p.redis.Get(ctx, lastSeenKeyPrefix+userID).Result()
	if err != nil {
		if err != redis.Nil {
			p.logger.Warn("failed to read last seen", "userId", userID, "error", err)
		}
		return time.Time{}, false
	}

	lastSeen, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return lastSeen, true
}
