package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"soundwave/logger"
	"soundwave/model"
)

// trackCacheTTL bounds staleness for cached track records.
const trackCacheTTL = 10 * time.Minute

// TrackCache is a read-through cache for single-track lookups. A nil
// client disables it: Get always misses and Set/Invalidate are no-ops, so
// the server runs unchanged without Redis.
type TrackCache struct {
	client *redis.Client
}

// NewTrackCache creates a track cache over client, which may be nil.
func NewTrackCache(client *redis.Client) *TrackCache {
	return &TrackCache{client: client}
}

func trackKey(id int64) string {
	return fmt.Sprintf("soundwave:track:%d", id)
}

// Get returns the cached track, or nil on a miss.
func (c *TrackCache) Get(ctx context.Context, id int64) *model.Track {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, trackKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("track cache read failed",
				logger.Int64("trackId", id),
				logger.ErrorField(err))
		}
		return nil
	}

	track := &model.Track{}
	if err := json.Unmarshal(data, track); err != nil {
		logger.Warn("track cache entry corrupt, dropping",
			logger.Int64("trackId", id),
			logger.ErrorField(err))
		c.Invalidate(ctx, id)
		return nil
	}
	return track
}

// Set stores the track. Failures are logged and otherwise ignored.
func (c *TrackCache) Set(ctx context.Context, track *model.Track) {
	if c == nil || c.client == nil || track == nil {
		return
	}

	data, err := json.Marshal(track)
	if err != nil {
		logger.Warn("failed to marshal track for cache",
			logger.Int64("trackId", track.ID),
			logger.ErrorField(err))
		return
	}

	if err := c.client.Set(ctx, trackKey(track.ID), data, trackCacheTTL).Err(); err != nil {
		logger.Warn("track cache write failed",
			logger.Int64("trackId", track.ID),
			logger.ErrorField(err))
	}
}

// Invalidate drops the cached track after an update or delete.
func (c *TrackCache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, trackKey(id)).Err(); err != nil {
		logger.Warn("track cache invalidation failed",
			logger.Int64("trackId", id),
			logger.ErrorField(err))
	}
}
