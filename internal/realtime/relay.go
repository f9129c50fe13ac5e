package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"spacebook/infras/kafka"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	RelayNone  = ""
	RelayRedis = "redis"
	RelayKafka = "kafka"
)

// RelayMessage carries an encoded frame between instances.
type RelayMessage struct {
	Origin  string          `json:"origin"`
	RoomKey RoomKey         `json:"roomKey"`
	Frame   json.RawMessage `json:"frame"`
}

type Relay interface {
	Publish(ctx context.Context, msg RelayMessage) error
	// Subscribe blocks until ctx is done, handing messages over one at a time.
	Subscribe(ctx context.Context, handler func(RelayMessage))
}

type redisRelay struct {
	client  goRedis.UniversalClient
	channel string
}

func NewRedisRelay(client goRedis.UniversalClient, channel string) Relay {
	return &redisRelay{client: client, channel: channel}
}

func (r *redisRelay) Publish(ctx context.Context, msg RelayMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode relay message: %w", err)
	}

	if err = r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish relay message: %w", err)
	}

	return nil
}

func (r *redisRelay) Subscribe(ctx context.Context, handler func(RelayMessage)) {
	pubsub := r.client.Subscribe(ctx, r.channel)

	defer func() {
		if err := pubsub.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close relay subscription")
		}
	}()

	log.Info().Str("channel", r.channel).Msg("listening for relayed room events")

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-messages:
			if !ok {
				return
			}

			var msg RelayMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				log.Warn().Err(err).Msg("ignoring undecodable relay message")

				continue
			}

			handler(msg)
		}
	}
}

type kafkaRelay struct {
	client kafka.Client
	topic  string
	group  string
}

// NewKafkaRelay needs a consumer group unique to this instance, since every instance must
// see every message.
func NewKafkaRelay(client kafka.Client, topic, group string) Relay {
	return &kafkaRelay{client: client, topic: topic, group: group}
}

func (k *kafkaRelay) Publish(ctx context.Context, msg RelayMessage) error {
	return k.client.SendMessages(ctx, k.topic, kafka.Message{Key: msg.RoomKey.String(), Value: msg}) //nolint:wrapcheck
}

func (k *kafkaRelay) Subscribe(ctx context.Context, handler func(RelayMessage)) {
	log.Info().Str("topic", k.topic).Str("group", k.group).Msg("listening for relayed room events")

	k.client.Consume(ctx, k.group, k.topic, func(_ context.Context, raw kafkaGo.Message) {
		msg, err := kafka.Decode[RelayMessage](raw)
		if err != nil {
			return
		}

		handler(msg)
	})
}
