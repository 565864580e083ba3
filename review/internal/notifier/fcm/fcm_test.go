package fcm

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	gen "github.com/abhishek622/movieticket/gen/mock/review/notifier"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestPublishSendsToBothTopics(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gen.NewMockmessagingClient(ctrl)
	p := New(client)
	ev := model.ReviewEvent{
		Type:             model.ReviewEventTypeCreated,
		ReviewID:         "r1",
		MovieID:          "603",
		MovieTitle:       "The Matrix",
		OwnerDisplayName: "Neo",
	}

	var topics []string
	client.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m *messaging.Message) (string, error) {
		topics = append(topics, m.Topic)
		assert.Equal(t, "Neo reviewed The Matrix.", m.Data["title"])
		assert.Equal(t, "r1", m.Data["reviewId"])
		return "msg", nil
	}).Times(2)

	assert.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, []string{"movie-reviews", "movie-603"}, topics)
}

func TestPublishStopsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := gen.NewMockmessagingClient(ctrl)
	wantErr := errors.New("unavailable")
	client.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", wantErr).Times(1)

	err := New(client).Publish(context.Background(), model.ReviewEvent{Type: model.ReviewEventTypeDeleted, MovieID: "603"})
	assert.ErrorIs(t, err, wantErr)
}
