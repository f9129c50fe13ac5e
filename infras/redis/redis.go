package redis

import (
	"context"
	"net"
	"spacebook/config"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 3 * time.Second

// Options maps the primary redis settings. A zero pool size keeps go-redis' default.
func Options(config *config.Config) *goRedis.Options {
	primary := config.Cache.Redis.Primary

	return &goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
		PoolSize: config.Cache.Redis.PoolSize,
	}
}

// New connects to the primary redis, retrying like the postgres connection does.
// The process exits when redis stays unreachable.
func New(config *config.Config) *goRedis.Client {
	client := goRedis.NewClient(Options(config))
	primary := config.Cache.Redis.Primary
	attempts := max(1, config.Cache.Redis.MaxRetry)

	for attempt := range attempts {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err := client.Ping(ctx).Err()

		cancel()

		if err == nil {
			log.Info().
				Int("db", primary.DB).
				Str("host", primary.Host).
				Str("port", primary.Port).
				Msg("Connected to Redis")

			return client
		}

		log.Error().
			Err(err).
			Str("host", primary.Host).
			Str("port", primary.Port).
			Int("attempt", attempt+1).
			Msg("Failed connecting to Redis, retrying")

		time.Sleep(time.Duration(config.Cache.Redis.RetryWaitTime) * time.Second)
	}

	log.Fatal().Int("attempts", attempts).Msg("Giving up connecting to Redis")

	return nil
}
