package leaderboard

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// RedisStore keeps scores in a sorted set and display names in a hash, both under
// arena:<namespace>.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

var _ Store = (*RedisStore)(nil)

type Options = redis.Options

func NewRedisStore(options Options, namespace string) *RedisStore {
	return &RedisStore{
		client:    redis.NewClient(&options),
		namespace: namespace,
	}
}

func (r *RedisStore) scoresKey() string {
	return "arena:" + r.namespace + ":kills"
}

func (r *RedisStore) namesKey() string {
	return "arena:" + r.namespace + ":names"
}

// Ping checks connectivity so misconfiguration fails at startup.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return eris.Wrap(err, "failed to reach redis")
	}
	return nil
}

func (r *RedisStore) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			pipe.ZIncrBy(ctx, r.scoresKey(), rec.Delta, rec.Player)
			if rec.Name != "" {
				pipe.HSet(ctx, r.namesKey(), rec.Player, rec.Name)
			}
		}
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "failed to write leaderboard records")
	}
	return nil
}

func (r *RedisStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	scores, err := r.client.ZRevRangeWithScores(ctx, r.scoresKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to read leaderboard")
	}
	out := make([]Entry, 0, len(scores))
	players := make([]string, 0, len(scores))
	for _, z := range scores {
		player, ok := z.Member.(string)
		if !ok {
			continue
		}
		players = append(players, player)
		out = append(out, Entry{Player: player, Score: z.Score})
	}
	if len(players) == 0 {
		return out, nil
	}

	names, err := r.client.HMGet(ctx, r.namesKey(), players...).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to read leaderboard names")
	}
	for i, name := range names {
		if s, ok := name.(string); ok {
			out[i].Name = s
		}
	}
	return out, nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		return eris.Wrap(err, "failed to close redis client")
	}
	return nil
}
