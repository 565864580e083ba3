// Package fcm pushes review events to Firebase Cloud Messaging topics.
package fcm

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/abhishek622/movieticket/review/pkg/model"
)

// AllReviewsTopic receives every review event.
const AllReviewsTopic = "movie-reviews"

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Publisher sends a data message per event to the all-reviews topic and to
// the topic of the reviewed movie.
type Publisher struct {
	client messagingClient
}

// New creates a publisher on top of a Firebase messaging client.
func New(client messagingClient) *Publisher {
	return &Publisher{client: client}
}

// MovieTopic returns the topic of a single movie's reviews.
func MovieTopic(movieID string) string {
	return "movie-" + movieID
}

// Publish sends event to both topics.
func (p *Publisher) Publish(ctx context.Context, event model.ReviewEvent) error {
	for _, topic := range []string{AllReviewsTopic, MovieTopic(event.MovieID)} {
		if _, err := p.client.Send(ctx, message(topic, event)); err != nil {
			return fmt.Errorf("send to topic %s: %w", topic, err)
		}
	}
	return nil
}

func message(topic string, event model.ReviewEvent) *messaging.Message {
	return &messaging.Message{
		Topic: topic,
		Data: map[string]string{
			"type":     string(event.Type),
			"reviewId": event.ReviewID,
			"movieId":  event.MovieID,
			"title":    title(event),
			"link":     "/reviews/" + event.ReviewID,
		},
	}
}

func title(event model.ReviewEvent) string {
	switch event.Type {
	case model.ReviewEventTypeCreated:
		return fmt.Sprintf("%s reviewed %s.", event.OwnerDisplayName, event.MovieTitle)
	case model.ReviewEventTypeUpdated:
		return fmt.Sprintf("%s updated a review of %s.", event.OwnerDisplayName, event.MovieTitle)
	default:
		return fmt.Sprintf("%s removed a review of %s.", event.OwnerDisplayName, event.MovieTitle)
	}
}
