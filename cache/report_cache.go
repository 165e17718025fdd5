// Package cache хранит результаты отчётов в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "report"

// ReportCache is a JSON cache for report results. A nil *ReportCache is valid
// and behaves as a disabled cache.
type ReportCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ReportCache{rdb: rdb, ttl: ttl, prefix: defaultPrefix}
}

// NewRedisClient подключается к Redis и проверяет соединение. Пустой addr - кеш выключен.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// Key builds "report:<name>:<arg1>:<arg2>...".
func (c *ReportCache) Key(name string, args ...interface{}) string {
	parts := make([]string, 0, len(args)+2)
	parts = append(parts, c.keyPrefix(), name)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, ":")
}

func (c *ReportCache) keyPrefix() string {
	if c == nil || c.prefix == "" {
		return defaultPrefix
	}
	return c.prefix
}

func (c *ReportCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get декодирует закешированное значение в dst. Возвращает false при промахе.
func (c *ReportCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	bs, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(bs, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, value interface{}) error {
	if !c.enabled() {
		return nil
	}
	bs, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}
	if err := c.rdb.SetEx(ctx, key, bs, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// Invalidate удаляет все ключи отчётов.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, c.keyPrefix()+":*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan report keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete report keys: %w", err)
	}
	return nil
}
