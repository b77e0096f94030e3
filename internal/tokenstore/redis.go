package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Mutombe/silver-carbon/internal/models"
	"github.com/redis/go-redis/v9"
)

// Redis хранит пару одним ключом <prefix>tokens; SET атомарен,
// поэтому промежуточного состояния пары не бывает.
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "silver:".
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	if prefix == "" {
		prefix = "silver:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return NewRedisFromClient(rdb, prefix), nil
}

// NewRedisFromClient оборачивает готовый клиент.
func NewRedisFromClient(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, key: prefix + Key}
}

func (r *Redis) Get(ctx context.Context) (models.TokenPair, bool, error) {
	const op = "tokenstore.Redis.Get"

	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.TokenPair{}, false, nil
		}

		return models.TokenPair{}, false, fmt.Errorf("%s: %w", op, err)
	}

	var pair models.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return models.TokenPair{}, false, fmt.Errorf("%s: %w", op, err)
	}

	if !pair.Valid() {
		return models.TokenPair{}, false, nil
	}

	return pair, true, nil
}

func (r *Redis) Set(ctx context.Context, pair models.TokenPair) error {
	const op = "tokenstore.Redis.Set"

	if !pair.Valid() {
		return ErrInvalidPair
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	const op = "tokenstore.Redis.Clear"

	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
