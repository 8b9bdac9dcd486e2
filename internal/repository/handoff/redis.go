package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
)

// RedisRepository stores records in Redis with an expiry.
type RedisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRepository wraps client. A zero ttl keeps records forever.
func NewRedisRepository(client redis.UniversalClient, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		client: client,
		ttl:    ttl,
	}
}

// Save writes the record under key.
func (r *RedisRepository) Save(ctx context.Context, key string, record *alarm.Record) error {
	data, err := encode(record)
	if err != nil {
		return err
	}

	if err = r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store hand-off record: %w", err)
	}

	return nil
}

// Load reads the record stored under key.
func (r *RedisRepository) Load(ctx context.Context, key string) (*alarm.Record, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("load hand-off record: %w", err)
	}

	return decode(data)
}

// Ping checks the connection.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
