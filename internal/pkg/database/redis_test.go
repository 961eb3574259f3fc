package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}, mr
}

func TestNewRedisClient_ConnectionError(t *testing.T) {
	config := models.RedisConfig{
		Host:     "127.0.0.1",
		Port:     1,
		PoolSize: 1,
	}

	client, err := NewRedisClient(config)

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisClient_SetGetDelete(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:key", "value", time.Minute))

	got, err := client.Get(ctx, "test:key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.True(t, mr.TTL("test:key") > 0)

	require.NoError(t, client.Delete(ctx, "test:key"))
	_, err = client.Get(ctx, "test:key")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestRedisClient_IncrWindow(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	first, err := client.IncrWindow(ctx, "rate:limit:test", time.Minute)
	require.NoError(t, err)
	second, err := client.IncrWindow(ctx, "rate:limit:test", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, time.Minute, mr.TTL("rate:limit:test"))

	mr.FastForward(time.Minute + time.Second)

	third, err := client.IncrWindow(ctx, "rate:limit:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), third)
}

func TestRedisClient_Ping(t *testing.T) {
	client, mr := newTestRedis(t)
	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
