package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRenderCache memoizes wrapped paragraph lines and rendered PDF
// bytes. Both are pure functions of their inputs, so entries only ever
// age out by TTL.
type RedisRenderCache struct {
	client *redis.Client
}

func NewRedisRenderCache(client *redis.Client) *RedisRenderCache {
	return &RedisRenderCache{client: client}
}

func (c *RedisRenderCache) GetLines(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, "wrap/"+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, false, err
	}
	return lines, true, nil
}

func (c *RedisRenderCache) PutLines(ctx context.Context, key string, lines []string, ttl time.Duration) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "wrap/"+key, raw, ttl).Err()
}

func pdfKey(linkID, agreement string) string { return "pdf/" + agreement + "/" + linkID }

func (c *RedisRenderCache) GetPDF(ctx context.Context, linkID, agreement string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, pdfKey(linkID, agreement)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (c *RedisRenderCache) PutPDF(ctx context.Context, linkID, agreement string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, pdfKey(linkID, agreement), data, ttl).Err()
}

func (c *RedisRenderCache) DeletePDF(ctx context.Context, linkID, agreement string) error {
	return c.client.Del(ctx, pdfKey(linkID, agreement)).Err()
}
