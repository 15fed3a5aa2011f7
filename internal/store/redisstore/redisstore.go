// Package redisstore is the Redis implementation of store.StateStore,
// the production backing for cross-instance presence.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
)

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// wrap folds any client failure into the store-unavailable taxon so
// callers can decide fatal vs best-effort with errors.Is.
func wrap(op string, err error) error {
	return fmt.Errorf("redis %s: %v: %w", op, err, domain.ErrStoreUnavailable)
}

func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap("set", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("get", err)
	}
	return val, true, nil
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, wrap("mget", err)
	}
	out := make(map[string]string, len(keys))
	for i, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			log.Warn().Str("module", "store.redis").Str("key", keys[i]).Msg("mget returned non-string value")
			continue
		}
		out[keys[i]] = str
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return wrap("del", err)
	}
	return nil
}

func (s *Store) AddToSet(ctx context.Context, key, member string, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, key, member)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return wrap("sadd", err)
	}
	return nil
}

func (s *Store) RemoveFromSet(ctx context.Context, key, member string) error {
	if err := s.rdb.SRem(ctx, key, member).Err(); err != nil {
		return wrap("srem", err)
	}
	return nil
}

func (s *Store) Members(ctx context.Context, key string) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrap("smembers", err)
	}
	return members, nil
}

func (s *Store) Cardinality(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.SCard(ctx, key).Result()
	if err != nil {
		return 0, wrap("scard", err)
	}
	return n, nil
}

// Cardinalities pipelines one SCARD per key so callers can query many
// rooms without N round trips.
func (s *Store) Cardinalities(ctx context.Context, keys []string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.SCard(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, wrap("scard pipeline", err)
	}
	counts := make([]int64, len(keys))
	for i, cmd := range cmds {
		counts[i] = cmd.Val()
	}
	return counts, nil
}

func (s *Store) Increment(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrap("incr", err)
	}
	return n, nil
}

func (s *Store) Decrement(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Decr(ctx, key).Result()
	if err != nil {
		return 0, wrap("decr", err)
	}
	// Ungraceful shutdowns can leak decrements; clamp rather than let
	// the gauge go negative.
	if n < 0 {
		if err := s.rdb.Set(ctx, key, 0, 0).Err(); err != nil {
			return 0, wrap("decr clamp", err)
		}
		return 0, nil
	}
	return n, nil
}
