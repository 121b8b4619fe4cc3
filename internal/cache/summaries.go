// Package cache provides a read-through Redis cache in front of the
// summaries collection. Summaries are immutable once written, which makes
// them safe to cache for a long TTL.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const summaryTTL = 24 * time.Hour

// Summaries caches summary content per recording. A nil *Summaries is a
// valid no-op cache, so callers never need to branch on Redis being
// configured.
type Summaries struct {
	rdb *redis.Client
}

// NewSummaries creates a summary cache over rdb. Returns nil when rdb is
// nil.
func NewSummaries(rdb *redis.Client) *Summaries {
	if rdb == nil {
		return nil
	}
	return &Summaries{rdb: rdb}
}

func key(recordingID string) string {
	return "summary:" + recordingID
}

// Get returns the cached summary content and whether it was present.
// Redis errors are logged and reported as misses.
func (c *Summaries) Get(ctx context.Context, recordingID string) (string, bool) {
	if c == nil {
		return "", false
	}
	content, err := c.rdb.Get(ctx, key(recordingID)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("recordingId", recordingID).Msg("summary cache read failed")
		return "", false
	}
	return content, true
}

// Set stores summary content, best effort.
func (c *Summaries) Set(ctx context.Context, recordingID, content string) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key(recordingID), content, summaryTTL).Err(); err != nil {
		log.Warn().Err(err).Str("recordingId", recordingID).Msg("summary cache write failed")
	}
}
