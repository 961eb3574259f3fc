package repository

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

const defaultStatusTTL = 24 * time.Hour

// StatusCache keeps settled status views in Redis. PENDING views and
// completed views still awaiting their tally are never cached, so a poll
// reaches the ledger until nothing more can change.
type StatusCache struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewStatusCache(redisClient *database.RedisClient, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	return &StatusCache{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get returns the cached view or nil on a miss
func (c *StatusCache) Get(ctx context.Context, trackingID string) (*models.StatusView, error) {
	data, err := c.redis.Get(ctx, fmt.Sprintf(constants.KeyVoteStatus, trackingID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached status: %w", err)
	}

	var view models.StatusView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached status: %w", err)
	}
	return &view, nil
}

// Set caches a settled view and ignores anything else
func (c *StatusCache) Set(ctx context.Context, view *models.StatusView) error {
	if view == nil || view.TrackingID == "" || !view.Settled() {
		return nil
	}

	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := c.redis.Set(ctx, fmt.Sprintf(constants.KeyVoteStatus, view.TrackingID), data, c.ttl); err != nil {
		return fmt.Errorf("failed to cache status: %w", err)
	}
	return nil
}
