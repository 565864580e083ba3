package memory

import (
	"context"
	"sync"
	"time"

	"github.com/abhishek622/movieticket/review/internal/repository"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

const tracerID = "review-repository-memory"

// Repository defines an in-memory review and profile store.
type Repository struct {
	sync.RWMutex
	reviews  map[string]*model.Review
	order    []string
	profiles map[string]*model.UserProfile
	now      func() time.Time
}

// New creates a new memory repository.
func New() *Repository {
	return &Repository{
		reviews:  map[string]*model.Review{},
		profiles: map[string]*model.UserProfile{},
		now:      time.Now,
	}
}

// Create stores a new review owned by callerUID and returns its id.
func (r *Repository) Create(ctx context.Context, callerUID string, review *model.Review) (string, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Create")
	defer span.End()

	if callerUID == "" || review.OwnerUserID != callerUID {
		return "", repository.ErrPermission
	}
	r.Lock()
	defer r.Unlock()
	stored := *review
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.reviews[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	return stored.ID, nil
}

// Update applies patch to the review if callerUID owns it.
func (r *Repository) Update(ctx context.Context, callerUID string, id string, patch model.ReviewPatch) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Update")
	defer span.End()

	r.Lock()
	defer r.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !model.IsOwner(callerUID, review) {
		return repository.ErrPermission
	}
	patch.Apply(review)
	review.UpdatedAt = r.now()
	return nil
}

// Delete removes the review if callerUID owns it.
func (r *Repository) Delete(ctx context.Context, callerUID string, id string) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Delete")
	defer span.End()

	r.Lock()
	defer r.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !model.IsOwner(callerUID, review) {
		return repository.ErrPermission
	}
	delete(r.reviews, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get retrieves a review by id.
func (r *Repository) Get(ctx context.Context, id string) (*model.Review, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()

	r.RLock()
	defer r.RUnlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res := *review
	return &res, nil
}

// List returns every review in insertion order.
func (r *Repository) List(ctx context.Context) ([]*model.Review, error) {
	return r.list(ctx, "Repository/List", func(*model.Review) bool { return true })
}

// ListByOwner returns the reviews owned by uid in insertion order.
func (r *Repository) ListByOwner(ctx context.Context, uid string) ([]*model.Review, error) {
	return r.list(ctx, "Repository/ListByOwner", func(rv *model.Review) bool { return rv.OwnerUserID == uid })
}

func (r *Repository) list(ctx context.Context, spanName string, keep func(*model.Review) bool) ([]*model.Review, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, spanName)
	defer span.End()

	r.RLock()
	defer r.RUnlock()
	res := []*model.Review{}
	for _, id := range r.order {
		if rv := r.reviews[id]; keep(rv) {
			c := *rv
			res = append(res, &c)
		}
	}
	return res, nil
}

// GetProfile retrieves the profile of uid.
func (r *Repository) GetProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetProfile")
	defer span.End()

	r.RLock()
	defer r.RUnlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res := *p
	return &res, nil
}

// CreateProfile stores a new profile keyed by p.UID.
func (r *Repository) CreateProfile(ctx context.Context, p *model.UserProfile) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/CreateProfile")
	defer span.End()

	r.Lock()
	defer r.Unlock()
	stored := *p
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.profiles[p.UID] = &stored
	return nil
}

// TouchProfile refreshes the updatedAt timestamp of uid's profile.
func (r *Repository) TouchProfile(ctx context.Context, uid string) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/TouchProfile")
	defer span.End()

	r.Lock()
	defer r.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = r.now()
	return nil
}

// UpdateProfile applies patch to uid's profile.
func (r *Repository) UpdateProfile(ctx context.Context, uid string, patch model.ProfilePatch) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/UpdateProfile")
	defer span.End()

	r.Lock()
	defer r.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.Biography != nil {
		p.Biography = *patch.Biography
	}
	p.UpdatedAt = r.now()
	return nil
}

// DisplayNameTaken reports whether a profile other than exceptUID uses name.
func (r *Repository) DisplayNameTaken(ctx context.Context, name string, exceptUID string) (bool, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/DisplayNameTaken")
	defer span.End()

	r.RLock()
	defer r.RUnlock()
	for uid, p := range r.profiles {
		if p.DisplayName == name && uid != exceptUID {
			return true, nil
		}
	}
	return false, nil
}
