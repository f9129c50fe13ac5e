package di

import (
	"spacebook/config"
	"spacebook/infras/kafka"
	"spacebook/infras/otel"
	"spacebook/internal/realtime"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ProvideHub builds the room hub with the relay picked by REALTIME_RELAY_KIND.
func ProvideHub(cfg *config.Config, redisClient *goRedis.Client, otl otel.Otel) *realtime.Hub {
	instanceID := uuid.NewString()
	relayConfig := cfg.App.Realtime.Relay

	var relay realtime.Relay

	switch relayConfig.Kind {
	case realtime.RelayRedis:
		relay = realtime.NewRedisRelay(redisClient, relayConfig.Channel)
	case realtime.RelayKafka:
		group := cfg.Kafka.ConsumerGroup + "-" + instanceID
		relay = realtime.NewKafkaRelay(kafka.New(cfg), relayConfig.Channel, group)
	case realtime.RelayNone:
	default:
		log.Warn().Str("kind", relayConfig.Kind).Msg("unknown realtime relay, running single instance")
	}

	log.Info().Str("instanceId", instanceID).Str("relay", relayConfig.Kind).Msg("realtime hub ready")

	return realtime.NewHub(instanceID, relay, otl)
}
