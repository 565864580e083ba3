package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhishek622/movieticket/metadata/internal/repository"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

const (
	tracerID  = "metadata-repository-redis"
	keyPrefix = "movie:"
)

// Repository defines a Redis-backed movie metadata cache. Entries expire
// after the configured TTL.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis repository and checks the connection.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return &Repository{client: client, ttl: ttl}, nil
}

// Get retrieves movie metadata by movie id.
func (r *Repository) Get(ctx context.Context, id string) (*model.Movie, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()

	val, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	var m model.Movie
	if err := json.Unmarshal(val, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Put stores movie metadata for a given movie id.
func (r *Repository) Put(ctx context.Context, id string, movie *model.Movie) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Put")
	defer span.End()

	b, err := json.Marshal(movie)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+id, b, r.ttl).Err()
}

// Close closes the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}
