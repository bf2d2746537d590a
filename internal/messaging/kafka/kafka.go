package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wmkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const partitionKeyMetadata = "partition_key"

// Broker publishes and consumes JSON events over Kafka through Watermill.
// Events with the same key land on the same partition, so per-order
// ordering is preserved.
type Broker struct {
	publisher *wmkafka.Publisher
	brokers   []string
	group     string
	clientID  string
	logger    watermill.LoggerAdapter
}

// NewBroker connects a publisher to the given brokers. Subscribers are
// created per Consume call, each joining the configured consumer group.
func NewBroker(brokers []string, consumerGroup, clientID string, slogger *slog.Logger) (*Broker, error) {
	logger := watermill.NewSlogLogger(slogger)

	saramaCfg := wmkafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.ClientID = clientID

	marshaler := wmkafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(partitionKeyMetadata), nil
	})

	publisher, err := wmkafka.NewPublisher(wmkafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             marshaler,
		OverwriteSaramaConfig: saramaCfg,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &Broker{
		publisher: publisher,
		brokers:   brokers,
		group:     consumerGroup,
		clientID:  clientID,
		logger:    logger,
	}, nil
}

func (b *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(partitionKeyMetadata, key)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Consume reads messages from the topic until ctx is cancelled. Handler
// errors nack the message for redelivery; handlers must therefore be
// idempotent.
func (b *Broker) Consume(ctx context.Context, topic string, handler func(ctx context.Context, payload []byte) error) error {
	saramaCfg := wmkafka.DefaultSaramaSubscriberConfig()
	saramaCfg.ClientID = b.clientID
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	subscriber, err := wmkafka.NewSubscriber(wmkafka.SubscriberConfig{
		Brokers:               b.brokers,
		Unmarshaler:           wmkafka.DefaultMarshaler{},
		ConsumerGroup:         b.group,
		OverwriteSaramaConfig: saramaCfg,
	}, b.logger)
	if err != nil {
		return fmt.Errorf("failed to create kafka subscriber for %s: %w", topic, err)
	}
	defer subscriber.Close()

	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for msg := range messages {
		if err := handler(msg.Context(), msg.Payload); err != nil {
			slog.Error("Error handling message", "topic", topic, "err", err)
			msg.Nack()
			continue
		}
		msg.Ack()
	}

	slog.Info("Consumer shutting down", "topic", topic)
	return nil
}

func (b *Broker) Close() error {
	return b.publisher.Close()
}
