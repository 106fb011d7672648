package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOrderPlaced(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	var sent OrderPlacedEvent
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderPlaced {
			return errors.New("unexpected topic " + msg.Topic)
		}
		data, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &sent)
	})

	p := NewPublisherWithProducer(producer, nil)
	err := p.PublishOrderPlaced(context.Background(), OrderPlacedEvent{OrderID: "order-1", ItemCount: 2})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	assert.Equal(t, "order-1", sent.OrderID)
	assert.Equal(t, EventTypeOrderPlaced, sent.EventType)
	assert.NotEmpty(t, sent.EventID)
}

func TestPublishProductViewedFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, nil)
	err := p.PublishProductViewed(context.Background(), ProductViewedEvent{ProductID: "p1"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
