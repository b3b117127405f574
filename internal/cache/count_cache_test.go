package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

type fakeRedis struct {
	store   map[string]string
	failing bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failing {
		return redis.NewStringResult("", errors.New("redis down"))
	}
	value, ok := f.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.failing {
		return redis.NewStatusResult("", errors.New("redis down"))
	}
	f.store[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.store[key]; ok {
			delete(f.store, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestCountCache_SetAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeRedis()
	cache := NewCountCache(client, time.Minute)

	_, ok := cache.Get(ctx, TotalKey())
	assert.False(t, ok)

	cache.Set(ctx, TotalKey(), 42)
	count, ok := cache.Get(ctx, TotalKey())
	require.True(t, ok)
	assert.EqualValues(t, 42, count)
}

func TestCountCache_InvalidateDropsAffectedKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeRedis()
	cache := NewCountCache(client, time.Minute)

	cache.Set(ctx, TotalKey(), 3)
	cache.Set(ctx, CourseKey("course-1"), 2)
	cache.Set(ctx, UserKey("user-1"), 1)
	cache.Set(ctx, StatusKey(domain.EnrollmentStatusEnrolled), 3)
	cache.Set(ctx, CourseKey("course-2"), 9)

	cache.Invalidate(ctx, "user-1", "course-1")

	for _, key := range []string{
		TotalKey(),
		CourseKey("course-1"),
		UserKey("user-1"),
		StatusKey(domain.EnrollmentStatusEnrolled),
	} {
		_, ok := cache.Get(ctx, key)
		assert.False(t, ok, "key %s should be invalidated", key)
	}

	// unrelated course count survives
	count, ok := cache.Get(ctx, CourseKey("course-2"))
	require.True(t, ok)
	assert.EqualValues(t, 9, count)
}

func TestCountCache_RedisFailureIsAMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeRedis()
	client.failing = true
	cache := NewCountCache(client, time.Minute)

	cache.Set(ctx, TotalKey(), 7)
	_, ok := cache.Get(ctx, TotalKey())
	assert.False(t, ok)
}

func TestCountCache_NilCacheIsInert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var cache *CountCache

	_, ok := cache.Get(ctx, TotalKey())
	assert.False(t, ok)
	cache.Set(ctx, TotalKey(), 1)
	cache.Invalidate(ctx, "user-1", "course-1")
}
