package leaderboard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/arena/pkg/leaderboard"
)

func newRedisStore(t *testing.T) (*leaderboard.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store := leaderboard.NewRedisStore(leaderboard.Options{Addr: s.Addr()}, "m1")
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) leaderboard.Store{
		"memory": func(*testing.T) leaderboard.Store { return leaderboard.NewMemoryStore() },
		"redis": func(t *testing.T) leaderboard.Store {
			store, _ := newRedisStore(t)
			return store
		},
	}
	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := build(t)
			require.NoError(t, store.Add(ctx, []leaderboard.Record{
				{Player: "alice", Name: "Alice", Delta: 1},
				{Player: "bob", Name: "Bob", Delta: 0},
				{Player: "carol", Delta: 2},
			}))
			require.NoError(t, store.Add(ctx, []leaderboard.Record{{Player: "alice", Delta: 2}}))
			require.NoError(t, store.Add(ctx, nil))

			top, err := store.Top(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, []leaderboard.Entry{
				{Player: "alice", Name: "Alice", Score: 3},
				{Player: "carol", Score: 2},
			}, top)

			all, err := store.Top(ctx, 10)
			require.NoError(t, err)
			assert.Len(t, all, 3)
			assert.Equal(t, "Bob", all[2].Name)
		})
	}
}

func TestRedisStoreLayout(t *testing.T) {
	t.Parallel()

	store, s := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Add(ctx, []leaderboard.Record{{Player: "alice", Name: "Alice", Delta: 5}}))

	score, err := s.ZScore("arena:m1:kills", "alice")
	require.NoError(t, err)
	assert.InDelta(t, 5, score, 0)
	assert.Equal(t, "Alice", s.HGet("arena:m1:names", "alice"))
}

func TestRedisStoreUnreachable(t *testing.T) {
	t.Parallel()

	store, s := newRedisStore(t)
	s.Close()
	require.Error(t, store.Ping(context.Background()))
}

type slowStore struct {
	leaderboard.Store
	mu      sync.Mutex
	batches int
}

func (s *slowStore) Add(ctx context.Context, records []leaderboard.Record) error {
	s.mu.Lock()
	s.batches++
	s.mu.Unlock()
	return s.Store.Add(ctx, records)
}

func TestPublisherDeliversAndFlushesOnShutdown(t *testing.T) {
	t.Parallel()

	store := &slowStore{Store: leaderboard.NewMemoryStore()}
	pub := leaderboard.NewPublisher(store, 16, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pub.Run(ctx) }()

	assert.True(t, pub.Offer(leaderboard.Record{Player: "alice", Delta: 1}))
	assert.Eventually(t, func() bool {
		top, _ := store.Top(context.Background(), 1)
		return len(top) == 1 && top[0].Score == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	t.Parallel()

	pub := leaderboard.NewPublisher(leaderboard.NewMemoryStore(), 1, zerolog.Nop())
	assert.True(t, pub.Offer(leaderboard.Record{Player: "a", Delta: 1}))
	assert.False(t, pub.Offer(leaderboard.Record{Player: "b", Delta: 1}))
	assert.Equal(t, int64(1), pub.Dropped())

	// nothing was consumed yet, so the queued record is flushed on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, pub.Run(ctx))
	top, err := pub.Store().Top(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []leaderboard.Entry{{Player: "a", Score: 1}}, top)
}
