package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// GetMenu returns nil, nil on a cache miss.
	GetMenu(ctx context.Context, restaurantID uuid.UUID) (*models.Menu, error)
	SetMenu(ctx context.Context, restaurantID uuid.UUID, menu *models.Menu, ttl time.Duration) error
	InvalidateMenu(ctx context.Context, restaurantID uuid.UUID) error
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient builds a client from an address that may carry a redis://
// or rediss:// prefix.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	return redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func menuKey(restaurantID uuid.UUID) string {
	return fmt.Sprintf("mesa:menu:%s", restaurantID.String())
}

func (r *redisCacheService) GetMenu(ctx context.Context, restaurantID uuid.UUID) (*models.Menu, error) {
	data, err := r.client.Get(ctx, menuKey(restaurantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var menu models.Menu
	if err := json.Unmarshal(data, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *redisCacheService) SetMenu(ctx context.Context, restaurantID uuid.UUID, menu *models.Menu, ttl time.Duration) error {
	data, err := json.Marshal(menu)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, menuKey(restaurantID), data, ttl).Err()
}

func (r *redisCacheService) InvalidateMenu(ctx context.Context, restaurantID uuid.UUID) error {
	return r.client.Del(ctx, menuKey(restaurantID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NoopCache never stores anything; every lookup is a miss.
type NoopCache struct{}

func (NoopCache) GetMenu(context.Context, uuid.UUID) (*models.Menu, error) { return nil, nil }
func (NoopCache) SetMenu(context.Context, uuid.UUID, *models.Menu, time.Duration) error {
	return nil
}
func (NoopCache) InvalidateMenu(context.Context, uuid.UUID) error { return nil }
func (NoopCache) Ping(context.Context) error                      { return nil }
