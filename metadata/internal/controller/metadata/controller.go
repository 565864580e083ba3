package metadata

import (
	"context"
	"errors"
	"strings"

	"github.com/abhishek622/movieticket/metadata/internal/gateway"
	"github.com/abhishek622/movieticket/metadata/internal/repository"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/abhishek622/movieticket/pkg/memo"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the movie does not exist upstream.
var ErrNotFound = gateway.ErrNotFound

type movieGateway interface {
	Movie(ctx context.Context, id string) (*model.Movie, error)
	Credits(ctx context.Context, id string) (*model.RawCredits, error)
	Popular(ctx context.Context, page int) (*model.MoviePage, error)
	NowPlaying(ctx context.Context, page int) (*model.MoviePage, error)
	Search(ctx context.Context, query string, page int) (*model.MoviePage, error)
}

type movieCache interface {
	Get(ctx context.Context, id string) (*model.Movie, error)
	Put(ctx context.Context, id string, movie *model.Movie) error
}

// Controller defines a movie metadata service controller.
type Controller struct {
	gateway movieGateway
	cache   movieCache
	genres  *memo.Cache[string, []string]
	logger  *zap.Logger
	scope   tally.Scope
}

// New creates a metadata service controller.
func New(gateway movieGateway, cache movieCache, logger *zap.Logger, scope tally.Scope) *Controller {
	c := &Controller{gateway: gateway, cache: cache, logger: logger, scope: scope}
	c.genres = memo.NewCache(c.fetchGenres)
	return c
}

// Get returns movie metadata by id, reading through the cache.
func (c *Controller) Get(ctx context.Context, id string) (*model.Movie, error) {
	cached, err := c.cache.Get(ctx, id)
	if err == nil {
		c.scope.Counter("cache_hit").Inc(1)
		return cached, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		c.logger.Warn("Failed to read movie cache", zap.String("movieId", id), zap.Error(err))
	}
	c.scope.Counter("cache_miss").Inc(1)

	m, err := c.gateway.Movie(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(ctx, id, m); err != nil {
		c.logger.Warn("Failed to update movie cache", zap.String("movieId", id), zap.Error(err))
	}
	return m, nil
}

// Genres returns the genre names of a movie. Each movie id is fetched at
// most once for the controller's lifetime; concurrent calls for the same id
// share one fetch. An empty, non-nil slice means the movie has no genres.
func (c *Controller) Genres(ctx context.Context, id string) ([]string, error) {
	return c.genres.Get(ctx, id)
}

func (c *Controller) fetchGenres(ctx context.Context, id string) ([]string, error) {
	m, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.GenreNames(), nil
}

// Credits returns the cast and directors of a movie, deduplicated by name.
// On failure both lists are empty and the error is returned.
func (c *Controller) Credits(ctx context.Context, id string) (*model.Credits, error) {
	raw, err := c.gateway.Credits(ctx, id)
	if err != nil {
		c.scope.Counter("credits_error").Inc(1)
		return &model.Credits{Cast: []model.CastMember{}, Directors: []model.CrewMember{}}, err
	}
	return &model.Credits{
		Cast:      DedupeCast(raw.Cast),
		Directors: Directors(raw.Crew),
	}, nil
}

// Popular returns a page of popular movies.
func (c *Controller) Popular(ctx context.Context, page int) (*model.MoviePage, error) {
	return c.gateway.Popular(ctx, page)
}

// NowPlaying returns a page of movies currently in theaters.
func (c *Controller) NowPlaying(ctx context.Context, page int) (*model.MoviePage, error) {
	return c.gateway.NowPlaying(ctx, page)
}

// Search returns movies matching query. A blank query yields an empty page
// without calling the upstream API.
func (c *Controller) Search(ctx context.Context, query string, page int) (*model.MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &model.MoviePage{Page: 1, Results: []model.Movie{}}, nil
	}
	return c.gateway.Search(ctx, query, page)
}
