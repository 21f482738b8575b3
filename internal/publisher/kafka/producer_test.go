package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/models"
)

func testAlert() *models.Alert {
	return &models.Alert{
		ID:              "alert-1",
		Entity:          "Acme",
		Type:            models.AlertTypeSentimentSpike,
		ChangeMagnitude: 40,
		PreviousScore:   0.1,
		CurrentScore:    0.5,
		Threshold:       30,
		Priority:        models.AlertPriorityEscalating,
		Status:          models.AlertStatusActive,
		CreatedAt:       time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_Publish(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event AlertEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeSentimentAlert {
			return errors.New("unexpected event type " + event.EventType)
		}
		if event.Data == nil || event.Data.ID != "alert-1" {
			return errors.New("alert missing from event")
		}
		return nil
	})

	publisher := NewPublisherWithProducer(producer, "sentiment-alerts", arbor.NewLogger())
	require.NoError(t, publisher.Publish(context.Background(), testAlert()))
	require.NoError(t, publisher.Close())
}

func TestPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewPublisherWithProducer(producer, "sentiment-alerts", arbor.NewLogger())
	err := publisher.Publish(context.Background(), testAlert())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewPublisherWithProducer(producer, "sentiment-alerts", arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.Publish(ctx, testAlert()), context.Canceled)
	require.NoError(t, publisher.Close())
}

func TestNewPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewPublisher(common.KafkaConfig{Topic: "sentiment-alerts"}, arbor.NewLogger())
	assert.Error(t, err)
}
