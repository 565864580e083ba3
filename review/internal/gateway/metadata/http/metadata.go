package http

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/abhishek622/movieticket/metadata/pkg/client"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/pkg/discovery"
)

// Gateway defines an HTTP gateway for the metadata service.
type Gateway struct {
	registry discovery.Registry
	http     *http.Client
}

// New creates a new HTTP gateway for the metadata service resolved through
// registry.
func New(registry discovery.Registry, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{registry: registry, http: &http.Client{Timeout: timeout}}
}

// Get returns movie metadata by a movie id.
func (g *Gateway) Get(ctx context.Context, id string) (*model.Movie, error) {
	c, err := g.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Movie(ctx, id)
}

func (g *Gateway) client(ctx context.Context) (*client.Client, error) {
	addrs, err := g.registry.ServiceAddresses(ctx, "metadata")
	if err != nil {
		return nil, fmt.Errorf("%w: resolve metadata service: %w", apperr.ErrFetch, err)
	}
	return client.New("http://"+addrs[rand.Intn(len(addrs))], g.http), nil
}
