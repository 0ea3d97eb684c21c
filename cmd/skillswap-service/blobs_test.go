package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/cache"
	"github.com/rajivgeraev/skillswap-api/internal/config"
)

func TestNewChatBlobStoreFallsBackToMemory(t *testing.T) {
	blobs, err := newChatBlobStore(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryStore{}, blobs)

	ctx := context.Background()
	require.NoError(t, blobs.Set(ctx, "key", []byte("value")))
	got, err := blobs.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	assert.NoError(t, blobs.Close())
}

func TestNewChatBlobStoreReportsUnreachableRedis(t *testing.T) {
	cfg := &config.Config{RedisConfig: config.RedisConfig{Addr: "127.0.0.1:1"}}

	blobs, err := newChatBlobStore(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, blobs)
}
