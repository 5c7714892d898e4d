package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sitebuilder/internal/domain"
)

const (
	defaultZoneCacheTimeout = 2 * time.Second
	defaultScanBatchSize    = 100
)

// RedisZoneCache keeps the contents of unregistered zones in Redis, outside
// the editor's heap. Each editing session works on its own scope, which is
// cleared when the page closes. Entries do not expire unless a TTL is set.
type RedisZoneCache struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
	scope      string
	ttl        time.Duration
	timeout    time.Duration
	logger     *zap.Logger
}

// RedisZoneCacheOption is a functional option for configuring the cache
type RedisZoneCacheOption func(*RedisZoneCache)

func WithZoneCachePrefix(prefix string) RedisZoneCacheOption {
	return func(c *RedisZoneCache) { c.prefix = prefix }
}

// WithZoneCacheTTL expires entries after ttl. Zero keeps them until Clear.
func WithZoneCacheTTL(ttl time.Duration) RedisZoneCacheOption {
	return func(c *RedisZoneCache) { c.ttl = ttl }
}

func WithZoneCacheLogger(logger *zap.Logger) RedisZoneCacheOption {
	return func(c *RedisZoneCache) { c.logger = logger }
}

// NewRedisZoneCache connects to the Redis server at url.
func NewRedisZoneCache(url string, opts ...RedisZoneCacheOption) (*RedisZoneCache, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisZoneCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisZoneCacheWithClient wraps an existing client. The caller keeps
// ownership of the client.
func NewRedisZoneCacheWithClient(client *redis.Client, opts ...RedisZoneCacheOption) *RedisZoneCache {
	c := &RedisZoneCache{
		client:  client,
		prefix:  "sitebuilder:",
		scope:   "default",
		timeout: defaultZoneCacheTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForSession returns a view of the cache scoped to one editing session.
func (c *RedisZoneCache) ForSession(sessionID string) *RedisZoneCache {
	scoped := *c
	scoped.scope = sessionID
	scoped.ownsClient = false
	return &scoped
}

func (c *RedisZoneCache) key(zone string) string {
	return fmt.Sprintf("%szone:%s:%s", c.prefix, c.scope, zone)
}

// Load returns the cached contents of zone. Redis failures count as a miss.
func (c *RedisZoneCache) Load(zone string) ([]domain.Node, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(zone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("zone cache get failed", zap.String("zone", zone), zap.Error(err))
		return nil, false
	}

	var nodes []domain.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		c.logger.Warn("zone cache entry corrupt", zap.String("zone", zone), zap.Error(err))
		return nil, false
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	return nodes, true
}

// Store saves the contents of zone, replacing any earlier entry.
func (c *RedisZoneCache) Store(zone string, nodes []domain.Node) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("encode zone %s: %w", zone, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key(zone), data, c.ttl).Err(); err != nil {
		c.logger.Warn("zone cache set failed", zap.String("zone", zone), zap.Error(err))
		return fmt.Errorf("cache zone %s: %w", zone, err)
	}
	return nil
}

// Clear deletes every entry in the cache's scope.
func (c *RedisZoneCache) Clear(ctx context.Context) error {
	pattern := fmt.Sprintf("%szone:%s:*", c.prefix, c.scope)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("scan zone cache: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete zone cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the client if the cache created it.
func (c *RedisZoneCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
