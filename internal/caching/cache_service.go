package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"homestock/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type CacheService interface {
	// Location caching
	GetLocation(ctx context.Context, ownerID, locationID uuid.UUID) (*models.Location, error)
	SetLocation(ctx context.Context, ownerID uuid.UUID, location *models.Location, ttl time.Duration) error
	DeleteLocation(ctx context.Context, ownerID, locationID uuid.UUID) error

	// Tree caching
	GetTree(ctx context.Context, ownerID uuid.UUID) ([]*models.TreeNode, error)
	SetTree(ctx context.Context, ownerID uuid.UUID, nodes []*models.TreeNode, ttl time.Duration) error

	// Item caching
	GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.Item, error)
	SetItem(ctx context.Context, ownerID uuid.UUID, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error

	// Stats caching
	GetOwnerStats(ctx context.Context, ownerID uuid.UUID) (*models.OwnerStats, error)
	SetOwnerStats(ctx context.Context, ownerID uuid.UUID, stats *models.OwnerStats, ttl time.Duration) error

	// Cache invalidation
	InvalidateOwnerCache(ctx context.Context, ownerID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	// Connectivity check for readiness probes
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisCacheService(addr, password string, db int, logger zerolog.Logger) CacheService {
	// Accept both bare host:port and redis://host:port forms
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	} else {
		logger.Debug().Str("addr", parsedAddr).Msg("redis connection established")
	}

	return &redisCacheService{client: client, logger: logger}
}

func (r *redisCacheService) GetLocation(ctx context.Context, ownerID, locationID uuid.UUID) (*models.Location, error) {
	key := fmt.Sprintf("homestock:location:%s:%s", ownerID.String(), locationID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var location models.Location
	if err := json.Unmarshal(data, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *redisCacheService) SetLocation(ctx context.Context, ownerID uuid.UUID, location *models.Location, ttl time.Duration) error {
	key := fmt.Sprintf("homestock:location:%s:%s", ownerID.String(), location.ID.String())
	data, err := json.Marshal(location)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteLocation(ctx context.Context, ownerID, locationID uuid.UUID) error {
	key := fmt.Sprintf("homestock:location:%s:%s", ownerID.String(), locationID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetTree(ctx context.Context, ownerID uuid.UUID) ([]*models.TreeNode, error) {
	key := fmt.Sprintf("homestock:tree:%s", ownerID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var nodes []*models.TreeNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *redisCacheService) SetTree(ctx context.Context, ownerID uuid.UUID, nodes []*models.TreeNode, ttl time.Duration) error {
	key := fmt.Sprintf("homestock:tree:%s", ownerID.String())
	data, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.Item, error) {
	key := fmt.Sprintf("homestock:item:%s:%s", ownerID.String(), itemID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, ownerID uuid.UUID, item *models.Item, ttl time.Duration) error {
	key := fmt.Sprintf("homestock:item:%s:%s", ownerID.String(), item.ID.String())
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error {
	key := fmt.Sprintf("homestock:item:%s:%s", ownerID.String(), itemID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetOwnerStats(ctx context.Context, ownerID uuid.UUID) (*models.OwnerStats, error) {
	key := fmt.Sprintf("homestock:stats:%s", ownerID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var stats models.OwnerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetOwnerStats(ctx context.Context, ownerID uuid.UUID, stats *models.OwnerStats, ttl time.Duration) error {
	key := fmt.Sprintf("homestock:stats:%s", ownerID.String())
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// InvalidateOwnerCache drops every cached read for one owner. Called after
// any location or item mutation; tree, stats and entity keys all embed the
// owner id right after the kind segment.
func (r *redisCacheService) InvalidateOwnerCache(ctx context.Context, ownerID uuid.UUID) error {
	pattern := fmt.Sprintf("homestock:*:%s*", ownerID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("homestock:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
