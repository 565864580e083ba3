package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

// Consumer reads review events from a Kafka topic.
type Consumer struct {
	consumer *kafka.Consumer
	logger   *zap.Logger
}

// NewConsumer creates a consumer in groupID subscribed to topic.
func NewConsumer(bootstrapServers string, groupID string, topic string, logger *zap.Logger) (*Consumer, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"group.id":          groupID,
		"auto.offset.reset": "latest",
	})
	if err != nil {
		return nil, err
	}
	if topic == "" {
		topic = DefaultTopic
	}
	if err := consumer.SubscribeTopics([]string{topic}, nil); err != nil {
		consumer.Close()
		return nil, err
	}
	return &Consumer{consumer: consumer, logger: logger}, nil
}

// Run passes every decoded event to handle until ctx is done or the
// client fails fatally. Undecodable messages are skipped.
func (c *Consumer) Run(ctx context.Context, handle func(context.Context, model.ReviewEvent)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := c.consumer.ReadMessage(time.Second)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			if errors.As(err, &kerr) && kerr.IsFatal() {
				return err
			}
			c.logger.Warn("Kafka consumer error", zap.Error(err))
			continue
		}
		event, err := Decode(msg.Value)
		if err != nil {
			c.logger.Warn("Skipping malformed review event", zap.String("key", string(msg.Key)), zap.Error(err))
			continue
		}
		handle(ctx, event)
	}
}

// Close leaves the group and closes the consumer.
func (c *Consumer) Close() error {
	return c.consumer.Close()
}
