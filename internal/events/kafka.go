package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/oggyb/homies/internal/config"
	"github.com/oggyb/homies/internal/domain"
)

const flushTimeoutMs = 15 * 1000

// KafkaPublisher writes events to one topic and waits for each delivery report.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	log      *slog.Logger
}

// NewPublisher returns a KafkaPublisher, or a NopPublisher when no brokers
// are configured.
func NewPublisher(cfg config.KafkaConfig, log *slog.Logger) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("kafka brokers not configured, events disabled")
		return NopPublisher{}, nil
	}

	configMap := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(cfg.Brokers, ","),
	}
	if cfg.ClientID != "" {
		if err := configMap.SetKey("client.id", cfg.ClientID); err != nil {
			return nil, fmt.Errorf("failed to set kafka client.id: %w", err)
		}
	}
	if cfg.MessageTimeout > 0 {
		if err := configMap.SetKey("message.timeout.ms", int(cfg.MessageTimeout.Milliseconds())); err != nil {
			return nil, fmt.Errorf("failed to set kafka message.timeout.ms: %w", err)
		}
	}

	p, err := kafka.NewProducer(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaPublisher{producer: p, topic: cfg.Topic, log: log}, nil
}

// Publish keys the message by the canonical pair so that events of one
// connection stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Buffered so a report arriving after ctx is done does not block the
	// producer. The channel is never closed; librdkafka may still write to it.
	deliveryChan := make(chan kafka.Event, 1)

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(domain.NewPair(e.ActorID, e.CounterpartID).String()),
		Value:          payload,
		Timestamp:      e.At,
		Headers:        []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
	}
	if err := p.producer.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("failed to enqueue event for topic %s: %w", p.topic, err)
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T: %v", ev, ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed for topic %s: %w", p.topic, m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for delivery report: %w", ctx.Err())
	}
}

// Close flushes outstanding messages and releases the producer.
func (p *KafkaPublisher) Close() {
	if remaining := p.producer.Flush(flushTimeoutMs); remaining > 0 {
		p.log.Warn("kafka messages still outstanding on close", "count", remaining)
	}
	p.producer.Close()
}
