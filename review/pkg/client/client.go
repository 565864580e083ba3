// Package client is an HTTP client for the review service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/pkg/model"
)

// Client calls a review service instance on behalf of one bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the review service at baseURL. An empty token
// makes anonymous requests. A nil httpClient gets a client with a 10 second
// timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

// CreateReviewRequest is the body of POST /reviews.
type CreateReviewRequest struct {
	MovieID     string  `json:"movieId"`
	ReviewTitle string  `json:"reviewTitle"`
	Rating      float64 `json:"rating"`
	ReviewText  string  `json:"reviewText"`
}

// List returns every review.
func (c *Client) List(ctx context.Context) ([]*model.Review, error) {
	var res []*model.Review
	if err := c.do(ctx, http.MethodGet, "/reviews", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Mine returns the reviews of the token's user.
func (c *Client) Mine(ctx context.Context) ([]*model.Review, error) {
	var res []*model.Review
	if err := c.do(ctx, http.MethodGet, "/me/reviews", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Get returns a review by id.
func (c *Client) Get(ctx context.Context, id string) (*model.Review, error) {
	var r model.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/"+url.PathEscape(id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create stores a new review and returns its id.
func (c *Client) Create(ctx context.Context, in CreateReviewRequest) (string, error) {
	var res struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/reviews", in, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// Update applies patch to a review and returns the stored result.
func (c *Client) Update(ctx context.Context, id string, patch model.ReviewPatch) (*model.Review, error) {
	var r model.Review
	if err := c.do(ctx, http.MethodPatch, "/reviews/"+url.PathEscape(id), patch, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a review.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil)
}

// Me returns the profile of the token's user.
func (c *Client) Me(ctx context.Context) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := c.do(ctx, http.MethodGet, "/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", failure(method), method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var n apperr.Notification
		_ = json.NewDecoder(resp.Body).Decode(&n)
		return fmt.Errorf("%w: %s %s: %d %s", statusErr(method, resp.StatusCode), method, path, resp.StatusCode, n.Message)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", apperr.ErrFetch, path, err)
	}
	return nil
}

func failure(method string) error {
	if method == http.MethodGet {
		return apperr.ErrFetch
	}
	return apperr.ErrWrite
}

func statusErr(method string, status int) error {
	switch status {
	case http.StatusBadRequest:
		return apperr.ErrValidation
	case http.StatusUnauthorized:
		return apperr.ErrUnauthenticated
	case http.StatusForbidden:
		return apperr.ErrPermission
	case http.StatusNotFound:
		return apperr.ErrNotFound
	default:
		return failure(method)
	}
}
