package cycles

import (
	"context"
	"errors"
	"fmt"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key a cycle search publishes its candidates under.
const DefaultRedisKey = "deptharb:cycles"

// RedisSource reads the latest candidate cycles published as one JSON document.
type RedisSource struct {
	client *redis.Client
	key    string
}

// NewRedisSource creates a source reading key.
func NewRedisSource(client *redis.Client, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{client: client, key: key}
}

// Cycles returns the published cycles. A missing key means no candidates.
func (r *RedisSource) Cycles(ctx context.Context) ([]arbitrage.Cycle, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []arbitrage.Cycle{}, nil
	}
	if err != nil {
		LoadErrorsTotal.WithLabelValues("redis").Inc()
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}

	cycles, err := Decode(data)
	if err != nil {
		LoadErrorsTotal.WithLabelValues("redis").Inc()
		return nil, fmt.Errorf("%s: %w", r.key, err)
	}
	return cycles, nil
}
