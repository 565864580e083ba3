package testutil

import (
	"net/http"

	"github.com/abhishek622/movieticket/pkg/discovery"
	"github.com/abhishek622/movieticket/review/internal/auth/jwt"
	"github.com/abhishek622/movieticket/review/internal/controller/profile"
	"github.com/abhishek622/movieticket/review/internal/controller/review"
	metadatagateway "github.com/abhishek622/movieticket/review/internal/gateway/metadata/http"
	httphandler "github.com/abhishek622/movieticket/review/internal/handler/http"
	"github.com/abhishek622/movieticket/review/internal/handler/ws"
	notifier "github.com/abhishek622/movieticket/review/internal/notifier/memory"
	"github.com/abhishek622/movieticket/review/internal/repository/memory"
	"github.com/go-chi/chi/v5"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// NewTestReviewHTTPHandler creates a review service HTTP handler backed by
// memory stores, resolving the metadata service through registry and
// accepting HS256 tokens signed with secret, to be used in tests.
func NewTestReviewHTTPHandler(registry discovery.Registry, secret []byte) http.Handler {
	logger := zap.NewNop()
	repo := memory.New()
	hub := notifier.NewHub(16)
	sessions := jwt.New(func() []byte { return secret })
	reviews := review.New(repo, metadatagateway.New(registry, 0), hub, logger, tally.NoopScope)
	profiles := profile.New(repo, sessions, logger)

	r := chi.NewRouter()
	httphandler.New(reviews, profiles, sessions, logger, false).Register(r)
	r.Handle("/ws/reviews", ws.New(hub, nil, logger))
	return r
}
