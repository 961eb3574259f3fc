package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/piresc/tallytrack/internal/pkg/constants"
	"github.com/piresc/tallytrack/internal/pkg/database"
	"github.com/piresc/tallytrack/internal/pkg/models"
)

// RedisTokenCache stores the Daraja token under one key per shortcode
type RedisTokenCache struct {
	redis *database.RedisClient
	key   string
}

func NewRedisTokenCache(redisClient *database.RedisClient, shortCode string) *RedisTokenCache {
	return &RedisTokenCache{
		redis: redisClient,
		key:   fmt.Sprintf(constants.KeyDarajaToken, shortCode),
	}
}

func (c *RedisTokenCache) Get(ctx context.Context) (*models.AccessToken, error) {
	data, err := c.redis.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached token: %w", err)
	}

	var token models.AccessToken
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached token: %w", err)
	}
	return &token, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, token *models.AccessToken, ttl time.Duration) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return c.redis.Set(ctx, c.key, data, ttl)
}

func (c *RedisTokenCache) Delete(ctx context.Context) error {
	return c.redis.Delete(ctx, c.key)
}
