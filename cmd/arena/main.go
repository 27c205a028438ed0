// Command arena runs a single match and serves it over HTTP and websockets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/argus-labs/arena/pkg/leaderboard"
	"github.com/argus-labs/arena/pkg/match"
	"github.com/argus-labs/arena/pkg/statsd"
	"github.com/argus-labs/arena/pkg/telemetry"
	"github.com/argus-labs/arena/pkg/transport"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg(eris.ToString(err, true))
	}
}

func run() error {
	cfg, err := loadServerConfig()
	if err != nil {
		return err
	}

	tel, err := telemetry.New(telemetry.Options{ServiceName: "arena"})
	if err != nil {
		return eris.Wrap(err, "failed to initialize telemetry")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			tel.Logger.Error().Err(err).Msg("telemetry shutdown failed")
		}
	}()
	logger := tel.GetLogger("main")

	metrics := statsd.NewNop()
	if cfg.StatsdAddress != "" {
		metrics, err = statsd.New(cfg.StatsdAddress, []string{"service:arena"}, tel.GetLogger("statsd"))
		if err != nil {
			return err
		}
	}
	defer metrics.Close()

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	publisher := leaderboard.NewPublisher(store, cfg.LeaderboardBuffer, tel.GetLogger("leaderboard"))

	matchLogger := tel.GetLogger("match")
	m, err := match.New(match.Options{
		Logger:  &matchLogger,
		Tracer:  tel.Tracer,
		Metrics: metrics,
		Sink:    publisher,
	})
	if err != nil {
		return err
	}
	server := transport.New(m, store, tel.GetLogger("transport"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(ctx) })
	g.Go(func() error { return publisher.Run(ctx) })
	g.Go(func() error { return server.Run(ctx, cfg.HTTPAddr) })

	logger.Info().
		Str("match", m.ID()).
		Str("gamemode", m.Gamemode()).
		Str("addr", cfg.HTTPAddr).
		Msg("arena started")

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "arena stopped with error")
	}
	logger.Info().Int64("dropped_records", publisher.Dropped()).Msg("arena stopped")
	return nil
}

func newStore(cfg serverConfig) (leaderboard.Store, error) {
	if cfg.RedisAddress == "" {
		return leaderboard.NewMemoryStore(), nil
	}
	store := leaderboard.NewRedisStore(leaderboard.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
	}, cfg.LeaderboardNamespace)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
