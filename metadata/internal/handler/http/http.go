package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/abhishek622/movieticket/metadata/internal/controller/metadata"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type metadataController interface {
	Get(ctx context.Context, id string) (*model.Movie, error)
	Genres(ctx context.Context, id string) ([]string, error)
	Credits(ctx context.Context, id string) (*model.Credits, error)
	Popular(ctx context.Context, page int) (*model.MoviePage, error)
	NowPlaying(ctx context.Context, page int) (*model.MoviePage, error)
	Search(ctx context.Context, query string, page int) (*model.MoviePage, error)
}

var _ metadataController = (*metadata.Controller)(nil)

// Handler defines a movie metadata HTTP handler.
type Handler struct {
	ctrl   metadataController
	logger *zap.Logger
}

// New creates a new movie metadata HTTP handler.
func New(ctrl metadataController, logger *zap.Logger) *Handler {
	return &Handler{ctrl: ctrl, logger: logger}
}

// Register mounts the metadata routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/movies", func(r chi.Router) {
		r.Get("/popular", h.Popular)
		r.Get("/now-playing", h.NowPlaying)
		r.Get("/{id}", h.GetMovie)
		r.Get("/{id}/genres", h.GetGenres)
		r.Get("/{id}/credits", h.GetCredits)
	})
	r.Get("/search", h.Search)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetMovie handles GET /movies/{id}.
func (h *Handler) GetMovie(w http.ResponseWriter, req *http.Request) {
	m, err := h.ctrl.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

// GetGenres handles GET /movies/{id}/genres.
func (h *Handler) GetGenres(w http.ResponseWriter, req *http.Request) {
	g, err := h.ctrl.Genres(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"genres": g})
}

// GetCredits handles GET /movies/{id}/credits.
func (h *Handler) GetCredits(w http.ResponseWriter, req *http.Request) {
	c, err := h.ctrl.Credits(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// Popular handles GET /movies/popular.
func (h *Handler) Popular(w http.ResponseWriter, req *http.Request) {
	p, err := h.ctrl.Popular(req.Context(), pageParam(req))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// NowPlaying handles GET /movies/now-playing.
func (h *Handler) NowPlaying(w http.ResponseWriter, req *http.Request) {
	p, err := h.ctrl.NowPlaying(req.Context(), pageParam(req))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// Search handles GET /search?query=.
func (h *Handler) Search(w http.ResponseWriter, req *http.Request) {
	p, err := h.ctrl.Search(req.Context(), req.URL.Query().Get("query"), pageParam(req))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func pageParam(req *http.Request) int {
	page, err := strconv.Atoi(req.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *Handler) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", req.URL.Path), zap.Error(err))
	}
	h.writeJSON(w, status, apperr.Notify(err))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Response encode error", zap.Error(err))
	}
}
