package main

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/arena/pkg/leaderboard"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.RedisAddress)
	assert.Equal(t, 256, cfg.LeaderboardBuffer)
}

func TestLoadServerConfigRejectsBadBuffer(t *testing.T) {
	t.Setenv("ARENA_LEADERBOARD_BUFFER", "0")
	_, err := loadServerConfig()
	require.Error(t, err)
}

func TestNewStoreWithoutRedisUsesMemory(t *testing.T) {
	store, err := newStore(serverConfig{})
	require.NoError(t, err)
	assert.IsType(t, &leaderboard.MemoryStore{}, store)
}

func TestNewStoreWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := newStore(serverConfig{RedisAddress: mr.Addr(), LeaderboardNamespace: "test"})
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &leaderboard.RedisStore{}, store)

	mr.Close()
	_, err = newStore(serverConfig{RedisAddress: mr.Addr(), LeaderboardNamespace: "test"})
	require.Error(t, err)
}
