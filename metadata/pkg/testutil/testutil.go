package testutil

import (
	"net/http"

	"github.com/abhishek622/movieticket/metadata/internal/controller/metadata"
	tmdbgateway "github.com/abhishek622/movieticket/metadata/internal/gateway/tmdb/http"
	httphandler "github.com/abhishek622/movieticket/metadata/internal/handler/http"
	"github.com/abhishek622/movieticket/metadata/internal/repository/memory"
	"github.com/go-chi/chi/v5"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// NewTestMetadataHTTPHandler creates a metadata HTTP handler backed by the
// TMDB-compatible API at tmdbURL, to be used in tests.
func NewTestMetadataHTTPHandler(tmdbURL string) http.Handler {
	logger := zap.NewNop()
	gateway := tmdbgateway.New(tmdbgateway.Config{BaseURL: tmdbURL, APIKey: "test"}, logger)
	ctrl := metadata.New(gateway, memory.New(), logger, tally.NoopScope)
	r := chi.NewRouter()
	httphandler.New(ctrl, logger).Register(r)
	return r
}
