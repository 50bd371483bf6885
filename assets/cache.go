package assets

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"assetbucket/cache"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "assets:payload:"

// payloadCache is an optional read-through cache of asset payloads keyed by
// base name. All methods are nil-receiver safe; an unconfigured Redis simply
// turns the feature off.
type payloadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newPayloadCacheFromEnv() *payloadCache {
	client, err := cache.GetRedisClient()
	if err != nil {
		log.Printf("assets: payload cache disabled: %v", err)
		return nil
	}
	if client == nil {
		return nil
	}

	ttl := 5 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("ASSET_CACHE_TTL_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			ttl = time.Duration(parsed) * time.Second
		}
	}
	return &payloadCache{client: client, ttl: ttl}
}

func (c *payloadCache) Get(baseName string) (AssetPayload, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := c.client.Get(ctx, cacheKeyPrefix+baseName).Bytes()
	if err != nil {
		return nil, false
	}
	var payload AssetPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	return payload, true
}

func (c *payloadCache) Set(baseName string, payload AssetPayload) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, cacheKeyPrefix+baseName, raw, c.ttl).Err(); err != nil {
		log.Printf("assets: cache payload for %s: %v", baseName, err)
	}
}

func (c *payloadCache) Invalidate(baseName string) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, cacheKeyPrefix+baseName).Err(); err != nil {
		log.Printf("assets: invalidate cache for %s: %v", baseName, err)
	}
}
