// Package cache implements a Redis cache of per-hall, per-day schedules.
// The public browse endpoint is the hot read path of the service; slots for
// a hall and date change rarely compared to how often members look at them.
// The scheduling service invalidates the touched hall/day key after every
// successful mutation, so readers see a stale schedule for at most one
// create/update/remove round-trip.
package cache

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"
)

// ScheduleCache caches marshalled schedule payloads keyed by hall number
// and ISO date.  A nil client disables the cache: Get always misses and
// Set/Invalidate are no-ops, so callers need no nil checks of their own.
type ScheduleCache struct {
    rdb *redis.Client
    ttl time.Duration
}

// NewScheduleCache returns a cache bound to rdb.  ttl bounds staleness for
// the rare case an invalidation is lost (e.g. Redis restart mid-write).
func NewScheduleCache(rdb *redis.Client, ttl time.Duration) *ScheduleCache {
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }
    return &ScheduleCache{rdb: rdb, ttl: ttl}
}

func scheduleKey(hallNumber int, date string) string {
    return fmt.Sprintf("schedule:hall:%d:%s", hallNumber, date)
}

// Get unmarshals the cached schedule for hall/date into dest and reports
// whether there was a hit.  Decode failures count as misses.
func (c *ScheduleCache) Get(ctx context.Context, hallNumber int, date string, dest interface{}) bool {
    if c == nil || c.rdb == nil {
        return false
    }
    bs, err := c.rdb.Get(ctx, scheduleKey(hallNumber, date)).Bytes()
    if err != nil {
        return false
    }
    return json.Unmarshal(bs, dest) == nil
}

// Set stores the schedule payload for hall/date.  Failures are swallowed:
// the cache is an optimization, never a source of truth.
func (c *ScheduleCache) Set(ctx context.Context, hallNumber int, date string, payload interface{}) {
    if c == nil || c.rdb == nil {
        return
    }
    bs, err := json.Marshal(payload)
    if err != nil {
        return
    }
    _ = c.rdb.Set(ctx, scheduleKey(hallNumber, date), bs, c.ttl).Err()
}

// Invalidate drops the cached schedule for hall/date.
func (c *ScheduleCache) Invalidate(ctx context.Context, hallNumber int, date string) {
    if c == nil || c.rdb == nil {
        return
    }
    _ = c.rdb.Del(ctx, scheduleKey(hallNumber, date)).Err()
}
