// Package cache keeps short-lived availability snapshots in Redis.
//
// Keys embed a per-property version counter. Any write that can change a
// property's availability bumps the counter, so stale snapshots are simply
// never read again and expire on their own.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func VersionKey(propertyID uint) string {
	return fmt.Sprintf("availability:%d:version", propertyID)
}

// WindowKey names one snapshot. The window is hashed so keys stay short.
func WindowKey(propertyID uint, version int64, start, end time.Time) string {
	raw := start.UTC().Format(time.RFC3339Nano) + "|" + end.UTC().Format(time.RFC3339Nano)
	sum := md5.Sum([]byte(raw))
	return fmt.Sprintf("availability:%d:v%d:%s", propertyID, version, hex.EncodeToString(sum[:]))
}

// Get decodes a cached snapshot into dst. hit is false on a miss. version
// is the counter the lookup ran against; hand it to Set so a snapshot
// computed before an Invalidate lands under a key nobody reads any more.
func (c *AvailabilityCache) Get(ctx context.Context, propertyID uint, start, end time.Time, dst any) (version int64, hit bool, err error) {
	version, err = c.version(ctx, propertyID)
	if err != nil {
		return 0, false, err
	}
	data, err := c.rdb.Get(ctx, WindowKey(propertyID, version, start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return version, false, nil
	}
	if err != nil {
		return version, false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return version, false, err
	}
	return version, true, nil
}

// Set stores v under the version observed by the preceding Get.
func (c *AvailabilityCache) Set(ctx context.Context, propertyID uint, version int64, start, end time.Time, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, WindowKey(propertyID, version, start, end), data, c.ttl).Err()
}

// Invalidate retires every snapshot of the property.
func (c *AvailabilityCache) Invalidate(ctx context.Context, propertyID uint) error {
	return c.rdb.Incr(ctx, VersionKey(propertyID)).Err()
}

func (c *AvailabilityCache) version(ctx context.Context, propertyID uint) (int64, error) {
	v, err := c.rdb.Get(ctx, VersionKey(propertyID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}
