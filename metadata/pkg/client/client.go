// Package client is an HTTP client for the metadata service API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/abhishek622/movieticket/pkg/apperr"
)

// Client calls a single metadata service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the metadata service at baseURL. A nil
// httpClient gets a client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Movie returns movie metadata by id.
func (c *Client) Movie(ctx context.Context, id string) (*model.Movie, error) {
	var m model.Movie
	if err := c.get(ctx, "/movies/"+url.PathEscape(id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Genres returns the genre names of a movie.
func (c *Client) Genres(ctx context.Context, id string) ([]string, error) {
	var res struct {
		Genres []string `json:"genres"`
	}
	if err := c.get(ctx, "/movies/"+url.PathEscape(id)+"/genres", &res); err != nil {
		return nil, err
	}
	if res.Genres == nil {
		res.Genres = []string{}
	}
	return res.Genres, nil
}

// Credits returns the aggregated credits of a movie.
func (c *Client) Credits(ctx context.Context, id string) (*model.Credits, error) {
	var cr model.Credits
	if err := c.get(ctx, "/movies/"+url.PathEscape(id)+"/credits", &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrFetch, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w: %s", apperr.ErrFetch, apperr.ErrNotFound, path)
	} else if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: non-2xx response from %s: %d", apperr.ErrFetch, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", apperr.ErrFetch, path, err)
	}
	return nil
}
