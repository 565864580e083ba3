// Package notifier fans review mutations out to listeners.
package notifier

import (
	"context"

	"github.com/abhishek622/movieticket/review/pkg/model"
	"go.uber.org/zap"
)

// Publisher delivers review events.
type Publisher interface {
	Publish(ctx context.Context, event model.ReviewEvent) error
}

// Multi publishes every event to all publishers. A failing publisher is
// logged and does not stop the others.
type Multi struct {
	publishers []Publisher
	logger     *zap.Logger
}

// NewMulti creates a publisher fanning out to publishers.
func NewMulti(logger *zap.Logger, publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers, logger: logger}
}

// Publish sends event to every publisher and always returns nil.
func (m *Multi) Publish(ctx context.Context, event model.ReviewEvent) error {
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			m.logger.Warn("Failed to publish review event",
				zap.String("type", string(event.Type)),
				zap.String("reviewId", event.ReviewID),
				zap.Error(err))
		}
	}
	return nil
}
