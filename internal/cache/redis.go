package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPrefix namespaces cache keys in a shared Redis.
const DefaultPrefix = "wallet_search:stmt:"

// Redis is a Store backed by a go-redis client.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client. A zero ttl stores entries without expiry.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: DefaultPrefix, ttl: ttl}
}

// Dial parses a redis:// URL, connects and pings the server.
func Dial(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func (r *Redis) Get(ctx context.Context, key string) (*Entry, error) {
	ctx, span := otel.Tracer("wallet_search.cache").Start(ctx, "redis.get")
	defer span.End()

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("redis get: %w", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return decode(data)
}

func (r *Redis) Set(ctx context.Context, key string, e *Entry) error {
	ctx, span := otel.Tracer("wallet_search.cache").Start(ctx, "redis.set")
	defer span.End()

	data, err := encode(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
