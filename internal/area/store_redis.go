package area

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRecordTTL = 24 * time.Hour

// RedisStore keeps one JSON record per area under area:<id>:game.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisStoreFromURL connects using a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) key(areaID string) string { return "area:" + strings.TrimSpace(areaID) + ":game" }
func (s *RedisStore) keyIndex() string { return "area:index" }

func (s *RedisStore) Load(ctx context.Context, areaID string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, s.key(areaID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode area record: %w", err)
	}
	return &rec, nil
}

// Save writes rec unless the stored record has the same or a newer version.
func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || strings.TrimSpace(rec.AreaID) == "" {
		return errors.New("area record without id")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := s.key(rec.AreaID)
	// WATCH the key so two writers cannot both pass the version check
	return s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		prev, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			var stored struct {
				Version int64 `json:"version"`
			}
			if json.Unmarshal(prev, &stored) == nil && stored.Version >= rec.Version {
				return fmt.Errorf("%w: stored v%d, writing v%d", ErrStaleRecord, stored.Version, rec.Version)
			}
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, key, raw, s.ttl)
		pipe.SAdd(ctx, s.keyIndex(), rec.AreaID)
		pipe.Expire(ctx, s.keyIndex(), s.ttl)
		_, err = pipe.Exec(ctx)
		return err
	}, key)
}

func (s *RedisStore) Delete(ctx context.Context, areaID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.key(areaID))
	pipe.SRem(ctx, s.keyIndex(), strings.TrimSpace(areaID))
	_, err := pipe.Exec(ctx)
	return err
}

// AreaIDs lists areas that have a stored record. Ids whose record expired are pruned.
func (s *RedisStore) AreaIDs(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, s.keyIndex()).Result()
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		n, err := s.rdb.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			_ = s.rdb.SRem(ctx, s.keyIndex(), id).Err()
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
