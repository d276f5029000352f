package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// RedisPasscodeStore keeps one-time passcodes under otp/<linkId> for
// customers and staffotp/<linkId> for staff callers. The value is the
// plain numeric code; expiry is left to the key TTL.
type RedisPasscodeStore struct {
	client *redis.Client
}

func NewRedisPasscodeStore(client *redis.Client) *RedisPasscodeStore {
	return &RedisPasscodeStore{client: client}
}

func passcodeKey(linkID string, purpose ports.PasscodePurpose) string {
	if purpose == ports.PasscodeStaff {
		return "staffotp/" + linkID
	}
	return "otp/" + linkID
}

func (s *RedisPasscodeStore) Put(ctx context.Context, linkID string, purpose ports.PasscodePurpose, code string, ttl time.Duration) error {
	return s.client.Set(ctx, passcodeKey(linkID, purpose), code, ttl).Err()
}

func (s *RedisPasscodeStore) Get(ctx context.Context, linkID string, purpose ports.PasscodePurpose) (string, bool, error) {
	raw, err := s.client.Get(ctx, passcodeKey(linkID, purpose)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return raw, true, nil
}

func (s *RedisPasscodeStore) Delete(ctx context.Context, linkID string, purpose ports.PasscodePurpose) error {
	return s.client.Del(ctx, passcodeKey(linkID, purpose)).Err()
}
