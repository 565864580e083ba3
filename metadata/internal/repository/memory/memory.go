package memory

import (
	"context"
	"sync"

	"github.com/abhishek622/movieticket/metadata/internal/repository"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"go.opentelemetry.io/otel"
)

// Repository defines a memory movie metadata repository.
type Repository struct {
	sync.RWMutex
	data map[string]*model.Movie
}

const tracerID = "metadata-repository-memory"

// New creates a new memory repository.
func New() *Repository {
	return &Repository{data: map[string]*model.Movie{}}
}

// Get retrieves movie metadata by movie id.
func (r *Repository) Get(ctx context.Context, id string) (*model.Movie, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()

	r.RLock()
	defer r.RUnlock()
	m, ok := r.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

// Put adds movie metadata for a given movie id.
func (r *Repository) Put(ctx context.Context, id string, movie *model.Movie) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Put")
	defer span.End()

	r.Lock()
	defer r.Unlock()
	r.data[id] = movie
	return nil
}
