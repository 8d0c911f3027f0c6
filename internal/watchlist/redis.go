package watchlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key the watch-list is published under.
const DefaultKey = "deptharb:watchlist"

// Publisher shares a replaced watch-list with other processes.
type Publisher interface {
	Publish(ctx context.Context, symbols []string) error
}

// Published is the JSON document stored in Redis.
type Published struct {
	Symbols   []string  `json:"symbols"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisPublisher stores the watch-list as a JSON document under one key.
type RedisPublisher struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisPublisher creates a publisher. A zero ttl keeps the key forever.
func NewRedisPublisher(client *redis.Client, key string, ttl time.Duration) *RedisPublisher {
	if key == "" {
		key = DefaultKey
	}
	return &RedisPublisher{client: client, key: key, ttl: ttl}
}

// Publish overwrites the stored watch-list.
func (p *RedisPublisher) Publish(ctx context.Context, symbols []string) error {
	doc := Published{Symbols: symbols, UpdatedAt: time.Now().UTC()}
	if doc.Symbols == nil {
		doc.Symbols = []string{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal watchlist: %w", err)
	}

	err = p.client.Set(ctx, p.key, data, p.ttl).Err()
	if err != nil {
		PublishErrorsTotal.Inc()
		return fmt.Errorf("set %s: %w", p.key, err)
	}

	return nil
}

// Load reads the stored watch-list. A missing key yields an empty document.
func (p *RedisPublisher) Load(ctx context.Context) (*Published, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Published{Symbols: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", p.key, err)
	}

	var doc Published
	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("unmarshal watchlist: %w", err)
	}

	return &doc, nil
}
