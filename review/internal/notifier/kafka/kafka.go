// Package kafka publishes review events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

// DefaultTopic is the topic review events are written to.
const DefaultTopic = "review-events"

// Producer writes review events as JSON keyed by review id.
type Producer struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
	done     chan struct{}
}

// NewProducer creates a producer connected to bootstrapServers.
func NewProducer(bootstrapServers string, topic string, logger *zap.Logger) (*Producer, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
	})
	if err != nil {
		return nil, err
	}
	if topic == "" {
		topic = DefaultTopic
	}
	p := &Producer{producer: producer, topic: topic, logger: logger, done: make(chan struct{})}
	go p.deliveryReports()
	return p, nil
}

func (p *Producer) deliveryReports() {
	defer close(p.done)
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Warn("Review event delivery failed", zap.String("key", string(ev.Key)), zap.Error(ev.TopicPartition.Error))
			}
		case kafka.Error:
			p.logger.Warn("Kafka producer error", zap.Error(ev))
		}
	}
}

// Publish enqueues event. Delivery failures are reported asynchronously.
func (p *Producer) Publish(_ context.Context, event model.ReviewEvent) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.ReviewID),
		Value:          payload,
	}, nil)
}

// Close waits up to 10 seconds for outstanding messages and closes the
// producer.
func (p *Producer) Close() {
	if remaining := p.producer.Flush(10_000); remaining != 0 {
		p.logger.Warn("Review events not delivered before shutdown", zap.Int("remaining", remaining))
	}
	p.producer.Close()
	<-p.done
}

// Encode returns the wire form of event.
func Encode(event model.ReviewEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Decode parses the wire form of a review event.
func Decode(payload []byte) (model.ReviewEvent, error) {
	var event model.ReviewEvent
	err := json.Unmarshal(payload, &event)
	return event, err
}
