package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/redis/go-redis/v9"
)

// Cache redis JSON缓存。rdb为nil时所有操作都是空操作
type Cache struct {
	rdb    redis.UniversalClient
	prefix string
}

func New(rdb redis.UniversalClient, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

// Enabled 是否连接了redis
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Key 拼接带前缀的缓存键
func (c *Cache) Key(parts ...string) string {
	k := c.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// CompanyKey 某公司下的缓存键
func (c *Cache) CompanyKey(companyID string, parts ...string) string {
	return c.Key(append([]string{"company", companyID}, parts...)...)
}

// GetJSON 命中返回true。redis错误原样返回，调用方可降级为直接计算
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache(false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// 脏数据当作未命中
		observability.ObserveCache(false)
		return false, nil
	}
	observability.ObserveCache(true)
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// InvalidateCompany 删除某公司的全部缓存键
func (c *Cache) InvalidateCompany(ctx context.Context, companyID string) error {
	return c.InvalidatePrefix(ctx, c.CompanyKey(companyID))
}

// InvalidatePrefix SCAN+DEL，不使用KEYS
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if !c.Enabled() {
		return nil
	}
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
