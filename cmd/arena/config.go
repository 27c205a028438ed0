package main

import (
	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

// serverConfig holds the process-level settings. Match and telemetry settings are read by
// their own packages.
type serverConfig struct {
	// HTTPAddr is where the HTTP and websocket endpoints listen.
	HTTPAddr string `env:"ARENA_HTTP_ADDR" envDefault:":8080"`

	// RedisAddress enables the Redis leaderboard. Empty keeps scores in memory.
	RedisAddress  string `env:"ARENA_REDIS_ADDRESS"`
	RedisPassword string `env:"ARENA_REDIS_PASSWORD"`

	// LeaderboardNamespace prefixes every leaderboard key.
	LeaderboardNamespace string `env:"ARENA_LEADERBOARD_NAMESPACE" envDefault:"default"`

	// LeaderboardBuffer bounds the records waiting to be written.
	LeaderboardBuffer int `env:"ARENA_LEADERBOARD_BUFFER" envDefault:"256"`

	// StatsdAddress enables DogStatsD metrics. Empty disables them.
	StatsdAddress string `env:"ARENA_STATSD_ADDRESS"`
}

func loadServerConfig() (serverConfig, error) {
	cfg := serverConfig{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse server config")
	}
	if cfg.HTTPAddr == "" {
		return cfg, eris.New("http address cannot be empty")
	}
	if cfg.LeaderboardBuffer <= 0 {
		return cfg, eris.New("leaderboard buffer must be positive")
	}
	if cfg.LeaderboardNamespace == "" {
		return cfg, eris.New("leaderboard namespace cannot be empty")
	}
	return cfg, nil
}
