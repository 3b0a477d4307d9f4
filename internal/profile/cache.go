package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/introbird/internal/types"
)

// DefaultCacheTTL bounds how stale a cached profile can be.
const DefaultCacheTTL = 5 * time.Minute

// CachedStore is a Redis read-through cache in front of another Store.
// Cache failures are logged and bypassed; they never fail a request.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("ProfileCache"),
	}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return client, nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// GetProfile serves from Redis when possible and fills the cache on a miss.
func (s *CachedStore) GetProfile(ctx context.Context, userID string) (*types.Profile, error) {
	key := cacheKey(userID)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p types.Profile
		if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
			return &p, nil
		}
		s.logger.Warn("Discarding undecodable cached profile", zap.String("userID", userID))
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("Profile cache read failed", zap.String("userID", userID), zap.Error(err))
	}

	p, err := s.next.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, p)
	return p, nil
}

// SaveProfile writes through to the backing store and refreshes the cache entry.
func (s *CachedStore) SaveProfile(ctx context.Context, userID string, update *types.Profile) (*types.Profile, error) {
	key := cacheKey(userID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Profile cache invalidation failed", zap.String("userID", userID), zap.Error(err))
	}

	p, err := s.next.SaveProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, p)
	return p, nil
}

func (s *CachedStore) store(ctx context.Context, key string, p *types.Profile) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("Profile cache write failed", zap.String("key", key), zap.Error(err))
	}
}
