package redis

import (
	"context"
	"net"
	"tutorhub/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// New connects to the primary node and exits when it does not answer a PING.
func New(cfg *config.Config) *goRedis.Client {
	node := cfg.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(node.Host, node.Port),
		Password: node.Password,
		DB:       node.DB,
	})

	logger := log.With().Str("host", node.Host).Str("port", node.Port).Int("db", node.DB).Logger()

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	logger.Info().Msg("Connected to Redis")

	return client
}
