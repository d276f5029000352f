package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

const sessionKeyPrefix = "onboard/"

// RedisSessionStore persists onboarding sessions under onboard/<linkId>
// with a sliding 24h TTL. Saves run inside a WATCH transaction keyed on
// the session record so a concurrent writer bumps the version first and
// the stale writer gets domain.ErrVersionConflict.
type RedisSessionStore struct {
	client *redis.Client
	nowFn  func() time.Time
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, nowFn: func() time.Time { return time.Now().UTC() }}
}

func sessionKey(linkID string) string { return sessionKeyPrefix + linkID }

func (s *RedisSessionStore) Create(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, sessionKey(session.LinkID), raw, domain.SessionTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrConflict
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, linkID string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(linkID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	var out domain.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Session{}, err
	}
	return out, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session domain.Session) (domain.Session, error) {
	key := sessionKey(session.LinkID)
	var out domain.Session
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrNotFound
			}
			return err
		}
		var stored domain.Session
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}
		if stored.Version != session.Version {
			return domain.ErrVersionConflict
		}
		session.Version++
		session.UpdatedAt = s.nowFn()
		buf, err := json.Marshal(session)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, buf, domain.SessionTTL)
			return nil
		})
		if err != nil {
			return err
		}
		out = session
		return nil
	}, key)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return domain.Session{}, domain.ErrVersionConflict
		}
		return domain.Session{}, err
	}
	return out, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, linkID string) error {
	return s.client.Del(ctx, sessionKey(linkID)).Err()
}

func (s *RedisSessionStore) ListByStatus(ctx context.Context, status string) ([]domain.Session, error) {
	var items []domain.Session
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var row domain.Session
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		if status == "" || row.Status == status {
			items = append(items, row)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
