package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"soundwave/model"
)

// The cache must be inert without a Redis client: every operation is a
// no-op and Get always misses.
func TestTrackCacheDisabledWithoutClient(t *testing.T) {
	ctx := context.Background()
	c := NewTrackCache(nil)

	assert.Nil(t, c.Get(ctx, 1))
	c.Set(ctx, &model.Track{ID: 1, Title: "Aurora"})
	assert.Nil(t, c.Get(ctx, 1))
	c.Invalidate(ctx, 1)

	var nilCache *TrackCache
	assert.Nil(t, nilCache.Get(ctx, 1))
	nilCache.Set(ctx, &model.Track{ID: 1})
	nilCache.Invalidate(ctx, 1)
}

func TestTrackKey(t *testing.T) {
	assert.Equal(t, "soundwave:track:42", trackKey(42))
}
