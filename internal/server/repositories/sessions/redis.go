package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	expiryIndexKey   = "sessions:expiry"
)

// RedisRepository stores each session as JSON under session:<id> with an
// absolute expiry, and indexes IDs by expiry time in a sorted set so expired
// records can be swept in one range query.
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisRepository) Save(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := sessionKey(s.ID)
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, data, 0)
		p.PExpireAt(ctx, key, s.ExpiresAt)
		p.ZAdd(ctx, expiryIndexKey, redis.Z{Score: float64(s.ExpiresAt.UnixMilli()), Member: s.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: redis error: %w", common.ErrorBackend, err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: redis error: %w", common.ErrorBackend, err)
	}

	s := &models.Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: decode session: %w", common.ErrorBackend, err)
	}
	return s, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKey(id))
		p.ZRem(ctx, expiryIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: redis error: %w", common.ErrorBackend, err)
	}
	return nil
}

func (r *RedisRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	ids, err := r.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: redis error: %w", common.ErrorBackend, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
		members[i] = id
	}

	var removed *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		removed = p.ZRem(ctx, expiryIndexKey, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: redis error: %w", common.ErrorBackend, err)
	}
	return int(removed.Val()), nil
}

func (r *RedisRepository) List(ctx context.Context) ([]*models.Session, error) {
	ids, err := r.client.ZRange(ctx, expiryIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis error: %w", common.ErrorBackend, err)
	}

	result := make([]*models.Session, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis error: %w", common.ErrorBackend, err)
	}

	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// key already expired in redis, index not swept yet
			continue
		}
		s := &models.Session{}
		if err := json.Unmarshal([]byte(str), s); err != nil {
			return nil, fmt.Errorf("%w: decode session: %w", common.ErrorBackend, err)
		}
		result = append(result, s)
	}
	return result, nil
}

// Healthcheck pings the redis server.
func (r *RedisRepository) Healthcheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis healthcheck: %w", common.ErrorBackend, err)
	}
	return nil
}
