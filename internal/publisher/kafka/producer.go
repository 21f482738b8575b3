package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
)

const EventTypeSentimentAlert = "sentiment_alert"

// AlertEvent is the JSON envelope written to the alert topic
type AlertEvent struct {
	EventType string        `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Data      *models.Alert `json:"data"`
}

// Publisher writes raised alerts to Kafka, keyed by entity so one entity's
// alerts stay on one partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   arbor.ILogger
}

var _ interfaces.AlertPublisher = (*Publisher)(nil)

// NewPublisher connects a sync producer to the configured brokers
func NewPublisher(config common.KafkaConfig, logger arbor.ILogger) (*Publisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = config.ClientID
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", config.Brokers).Str("topic", config.Topic).Msg("Kafka alert publisher connected")
	return NewPublisherWithProducer(producer, config.Topic, logger), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, logger arbor.ILogger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, alert *models.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(AlertEvent{
		EventType: EventTypeSentimentAlert,
		Timestamp: alert.CreatedAt,
		Data:      alert,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(models.NormalizeTextKey(alert.Entity)),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert %s: %w", alert.ID, err)
	}

	p.logger.Debug().
		Str("alert_id", alert.ID).
		Str("entity", alert.Entity).
		Int("partition", int(partition)).
		Int64("offset", offset).
		Msg("Alert published")
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
