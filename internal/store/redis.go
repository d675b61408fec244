package store

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis implements Client on top of go-redis. Batch maps to a transactional
// pipeline (MULTI/EXEC), which gives the all-or-nothing guarantee the
// scoring batch relies on.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Logger   *zap.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg *RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	cfg.Logger.Info("redis-store-connected",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB))

	return &Redis{client: client, logger: cfg.Logger}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis GET %s: %w", key, err)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

func (r *Redis) HGet(ctx context.Context, key, field string) (string, error) {
	val, err := r.client.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis HGET %s %s: %w", key, field, err)
	}
	return val, nil
}

func (r *Redis) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	val, err := r.client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis HINCRBY %s %s: %w", key, field, err)
	}
	return val, nil
}

func (r *Redis) ZIncrBy(ctx context.Context, key string, delta float64, member string) (float64, error) {
	val, err := r.client.ZIncrBy(ctx, key, delta, member).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ZINCRBY %s: %w", key, err)
	}
	return val, nil
}

func (r *Redis) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Member, error) {
	entries, err := r.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ZREVRANGE %s: %w", key, err)
	}
	members := make([]Member, 0, len(entries))
	for _, z := range entries {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		members = append(members, Member{ID: id, Score: z.Score})
	}
	return members, nil
}

func (r *Redis) ZRevRank(ctx context.Context, key, member string) (int64, error) {
	rank, err := r.client.ZRevRank(ctx, key, member).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis ZREVRANK %s: %w", key, err)
	}
	return rank, nil
}

func (r *Redis) ZCard(ctx context.Context, key string) (int64, error) {
	card, err := r.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ZCARD %s: %w", key, err)
	}
	return card, nil
}

func (r *Redis) SAdd(ctx context.Context, key, member string) error {
	if err := r.client.SAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("redis SADD %s: %w", key, err)
	}
	return nil
}

func (r *Redis) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, fmt.Errorf("redis SISMEMBER %s: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) LPush(ctx context.Context, key, value string) error {
	if err := r.client.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("redis LPUSH %s: %w", key, err)
	}
	return nil
}

func (r *Redis) LTrim(ctx context.Context, key string, start, stop int64) error {
	if err := r.client.LTrim(ctx, key, start, stop).Err(); err != nil {
		return fmt.Errorf("redis LTRIM %s: %w", key, err)
	}
	return nil
}

func (r *Redis) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := r.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis LRANGE %s: %w", key, err)
	}
	return vals, nil
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis EXPIRE %s: %w", key, err)
	}
	return nil
}

// Batch executes the ops inside a transactional pipeline.
func (r *Redis) Batch(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}

	start := time.Now()
	pipe := r.client.TxPipeline()
	for _, op := range ops {
		switch op.Kind {
		case OpKindSet:
			pipe.Set(ctx, op.Key, op.Value, 0)
		case OpKindHIncrBy:
			pipe.HIncrBy(ctx, op.Key, op.Field, op.Delta)
		case OpKindZIncrBy:
			pipe.ZIncrBy(ctx, op.Key, op.Score, op.Member)
		case OpKindSAdd:
			pipe.SAdd(ctx, op.Key, op.Member)
		case OpKindLPush:
			pipe.LPush(ctx, op.Key, op.Value)
		case OpKindLTrim:
			pipe.LTrim(ctx, op.Key, op.Start, op.Stop)
		case OpKindExpire:
			pipe.Expire(ctx, op.Key, op.TTL)
		default:
			return fmt.Errorf("unknown batch op kind %d", op.Kind)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		BatchErrorsTotal.Inc()
		return fmt.Errorf("exec pipeline (%d ops): %w", len(ops), err)
	}

	BatchesTotal.Inc()
	BatchOpsTotal.Add(float64(len(ops)))
	BatchDurationSeconds.Observe(time.Since(start).Seconds())

	r.logger.Debug("batch-committed",
		zap.Int("op-count", len(ops)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Close closes the underlying Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
