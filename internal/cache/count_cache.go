package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

const keyPrefix = "enrollments:count:"

// redisClient is the slice of the go-redis API the cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CountCache keeps short-lived copies of enrollment counts in redis so the
// reporting endpoints avoid a database round trip per call. Misses and redis
// failures both fall through to the store; the cache is never authoritative.
type CountCache struct {
	client redisClient
	ttl    time.Duration
}

// NewCountCache builds a cache around the given client.
func NewCountCache(client redisClient, ttl time.Duration) *CountCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CountCache{client: client, ttl: ttl}
}

// TotalKey addresses the all-enrollments count.
func TotalKey() string { return keyPrefix + "total" }

// CourseKey addresses a per-course count.
func CourseKey(courseID string) string { return keyPrefix + "course:" + courseID }

// UserKey addresses a per-user count.
func UserKey(userID string) string { return keyPrefix + "user:" + userID }

// StatusKey addresses a per-status count.
func StatusKey(status domain.EnrollmentStatus) string {
	return keyPrefix + "status:" + string(status)
}

// Get returns the cached count for a key and whether it was present.
func (c *CountCache) Get(ctx context.Context, key string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores a count under the configured TTL. Failures are ignored.
func (c *CountCache) Set(ctx context.Context, key string, count int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key, strconv.FormatInt(count, 10), c.ttl).Err()
}

// Invalidate drops every count a mutation of the given (user, course) pair
// could have changed: the total, both scoped counts, and all status buckets.
func (c *CountCache) Invalidate(ctx context.Context, userID, courseID string) {
	if c == nil || c.client == nil {
		return
	}
	keys := []string{
		TotalKey(),
		CourseKey(courseID),
		UserKey(userID),
		StatusKey(domain.EnrollmentStatusEnrolled),
		StatusKey(domain.EnrollmentStatusInProgress),
		StatusKey(domain.EnrollmentStatusCompleted),
		StatusKey(domain.EnrollmentStatusDropped),
	}
	_ = c.client.Del(ctx, keys...).Err()
}
