package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches user display names so the resolve-names endpoint and the
// message-list enrichment don't hit the User table for every id on every poll.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, nameTTL time.Duration) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{rdb: rdb, ttl: nameTTL}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func nameKey(userID string) string { return "user_name:" + userID }

func (s *Store) SetName(ctx context.Context, userID, name string) error {
	return s.rdb.Set(ctx, nameKey(userID), name, s.ttl).Err()
}

// GetNames returns the cached names for ids, and the ids that missed.
func (s *Store) GetNames(ctx context.Context, ids []string) (map[string]string, []string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = nameKey(id)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, ids, err
	}

	found := make(map[string]string, len(ids))
	var missing []string
	for i, v := range vals {
		if v == nil {
			missing = append(missing, ids[i])
			continue
		}
		if name, ok := v.(string); ok {
			found[ids[i]] = name
		} else {
			missing = append(missing, ids[i])
		}
	}
	return found, missing, nil
}

func (s *Store) DeleteName(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, nameKey(userID)).Err()
}
