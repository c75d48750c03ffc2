package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	c := New(nil, "buildpro")
	assert.Equal(t, "buildpro:dashboard", c.Key("dashboard"))
	assert.Equal(t, "buildpro:company:c1:dashboard", c.CompanyKey("c1", "dashboard"))
}

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	var nilCache *Cache
	assert.False(t, nilCache.Enabled())

	c := New(nil, "buildpro")
	var dst map[string]int
	hit, err := c.GetJSON(ctx, "k", &dst)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, c.InvalidateCompany(ctx, "c1"))
}

func TestUnreachableRedisReturnsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := New(rdb, "buildpro")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var dst map[string]int
	hit, err := c.GetJSON(ctx, c.Key("x"), &dst)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, c.SetJSON(ctx, c.Key("x"), 1, time.Minute))
	assert.Error(t, c.InvalidatePrefix(ctx, c.Key("x")))
}
