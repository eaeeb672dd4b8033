// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/models"
)

const (
	redisKeyPrefix = "analysis:"
	redisRecentKey = "analysis:recent"
)

// RedisStore keeps each record as JSON under analysis:<id> with a TTL and
// pushes ids onto a capped recent list.
type RedisStore struct {
	client      redis.Cmdable
	closer      func() error
	ttl         time.Duration
	recentLimit int
}

// NewRedisStore wraps client. A ttl of zero keeps records until evicted.
func NewRedisStore(client redis.Cmdable, ttl time.Duration, recentLimit int) *RedisStore {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	s := &RedisStore{client: client, ttl: ttl, recentLimit: recentLimit}
	if c, ok := client.(interface{ Close() error }); ok {
		s.closer = c.Close
	}
	return s
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Save(ctx context.Context, rec *models.AnalysisRecord) (err error) {
	defer func() { observe(BackendRedis, "save", err) }()

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.NewStoreOperationFailedError("save", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKey(rec.ID), data, s.ttl)
	pipe.LPush(ctx, redisRecentKey, rec.ID)
	pipe.LTrim(ctx, redisRecentKey, 0, int64(s.recentLimit-1))
	if _, err = pipe.Exec(ctx); err != nil {
		return errors.NewStoreOperationFailedError("save", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (rec *models.AnalysisRecord, err error) {
	defer func() { observe(BackendRedis, "get", err) }()

	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NewAnalysisNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewStoreOperationFailedError("get", err)
	}

	rec = &models.AnalysisRecord{}
	if err = json.Unmarshal(data, rec); err != nil {
		return nil, errors.NewStoreOperationFailedError("get", err)
	}
	return rec, nil
}

// List returns the newest records first. Ids whose value has expired are
// skipped.
func (s *RedisStore) List(ctx context.Context, limit int) (out []*models.AnalysisRecord, err error) {
	defer func() { observe(BackendRedis, "list", err) }()

	limit = clampLimit(limit, s.recentLimit)
	ids, err := s.client.LRange(ctx, redisRecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.NewStoreOperationFailedError("list", err)
	}

	out = make([]*models.AnalysisRecord, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.NewStoreOperationFailedError("list", err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		rec := &models.AnalysisRecord{}
		if err = json.Unmarshal([]byte(raw), rec); err != nil {
			return nil, errors.NewStoreOperationFailedError("list", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Backend() string { return BackendRedis }

func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
