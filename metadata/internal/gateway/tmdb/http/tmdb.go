package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhishek622/movieticket/metadata/internal/gateway"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public TMDB v3 API.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Config defines the TMDB gateway configuration.
type Config struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
	// RateLimit is the allowed number of requests per second. Zero disables
	// client side limiting.
	RateLimit float64
	Burst     int
}

// Gateway defines an HTTP gateway to the TMDB API.
type Gateway struct {
	baseURL  string
	apiKey   string
	language string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// New creates a new TMDB gateway.
func New(cfg Config, logger *zap.Logger) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Gateway{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  limiter,
		logger:   logger,
	}
}

// Movie returns the details of a movie, including its genres.
func (g *Gateway) Movie(ctx context.Context, id string) (*model.Movie, error) {
	var m model.Movie
	if err := g.get(ctx, "/movie/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	if m.Genres == nil {
		m.Genres = []model.Genre{}
	}
	return &m, nil
}

// Credits returns the raw cast and crew of a movie.
func (g *Gateway) Credits(ctx context.Context, id string) (*model.RawCredits, error) {
	var c model.RawCredits
	if err := g.get(ctx, "/movie/"+url.PathEscape(id)+"/credits", nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Popular returns a page of popular movies.
func (g *Gateway) Popular(ctx context.Context, page int) (*model.MoviePage, error) {
	return g.page(ctx, "/movie/popular", nil, page)
}

// NowPlaying returns a page of movies currently in theaters.
func (g *Gateway) NowPlaying(ctx context.Context, page int) (*model.MoviePage, error) {
	return g.page(ctx, "/movie/now_playing", nil, page)
}

// Search returns a page of movies matching query.
func (g *Gateway) Search(ctx context.Context, query string, page int) (*model.MoviePage, error) {
	return g.page(ctx, "/search/movie", url.Values{"query": {query}}, page)
}

func (g *Gateway) page(ctx context.Context, path string, params url.Values, page int) (*model.MoviePage, error) {
	if params == nil {
		params = url.Values{}
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	var p model.MoviePage
	if err := g.get(ctx, path, params, &p); err != nil {
		return nil, err
	}
	if p.Results == nil {
		p.Results = []model.Movie{}
	}
	return &p, nil
}

func (g *Gateway) get(ctx context.Context, path string, params url.Values, v any) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "tmdb GET "+path)
	defer span.Finish()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %w", apperr.ErrFetch, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrFetch, err)
	}
	values := req.URL.Query()
	for k, vs := range params {
		for _, s := range vs {
			values.Add(k, s)
		}
	}
	values.Set("api_key", g.apiKey)
	if g.language != "" {
		values.Set("language", g.language)
	}
	req.URL.RawQuery = values.Encode()

	g.logger.Debug("Calling TMDB", zap.String("path", path))
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return gateway.ErrNotFound
	} else if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: non-2xx response from %s: %d", apperr.ErrFetch, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", apperr.ErrFetch, path, err)
	}
	return nil
}
