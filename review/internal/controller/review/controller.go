package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	metadatamodel "github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/abhishek622/movieticket/review/internal/validation"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

type reviewRepository interface {
	Create(ctx context.Context, callerUID string, review *model.Review) (string, error)
	Update(ctx context.Context, callerUID string, id string, patch model.ReviewPatch) error
	Delete(ctx context.Context, callerUID string, id string) error
	Get(ctx context.Context, id string) (*model.Review, error)
	List(ctx context.Context) ([]*model.Review, error)
	ListByOwner(ctx context.Context, uid string) ([]*model.Review, error)
}

type metadataGateway interface {
	Get(ctx context.Context, id string) (*metadatamodel.Movie, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event model.ReviewEvent) error
}

// CreateInput holds the form fields of a new review.
type CreateInput struct {
	MovieID     string  `json:"movieId" validate:"required"`
	ReviewTitle string  `json:"reviewTitle" validate:"required,max=50"`
	Rating      float64 `json:"rating" validate:"rating"`
	ReviewText  string  `json:"reviewText" validate:"required,max=2000"`
}

// Controller defines a review service controller.
type Controller struct {
	repo      reviewRepository
	metadata  metadataGateway
	publisher eventPublisher
	validate  *validation.Validator
	logger    *zap.Logger
	scope     tally.Scope
	now       func() time.Time
}

// New creates a review service controller.
func New(repo reviewRepository, metadata metadataGateway, publisher eventPublisher, logger *zap.Logger, scope tally.Scope) *Controller {
	return &Controller{
		repo:      repo,
		metadata:  metadata,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger,
		scope:     scope,
		now:       time.Now,
	}
}

// Create snapshots the movie's metadata into a new review owned by owner
// and returns its id.
func (c *Controller) Create(ctx context.Context, owner auth.Identity, in CreateInput) (string, error) {
	if owner.UID == "" {
		return "", apperr.ErrUnauthenticated
	}
	if err := c.validate.Struct(in); err != nil {
		return "", err
	}
	movie, err := c.metadata.Get(ctx, in.MovieID)
	if err != nil {
		if !errors.Is(err, apperr.ErrFetch) {
			err = fmt.Errorf("%w: %w", apperr.ErrFetch, err)
		}
		return "", fmt.Errorf("movie %s: %w", in.MovieID, err)
	}

	review := &model.Review{
		OwnerUserID:      owner.UID,
		OwnerDisplayName: owner.DisplayName,
		MovieID:          in.MovieID,
		MovieTitle:       movie.Title,
		ReleaseYear:      movie.ReleaseYear(),
		PosterImage:      movie.PosterPath,
		ReviewTitle:      in.ReviewTitle,
		Rating:           in.Rating,
		ReviewText:       in.ReviewText,
	}
	id, err := c.repo.Create(ctx, owner.UID, review)
	if err != nil {
		c.scope.Counter("write_error").Inc(1)
		return "", fmt.Errorf("%w: %w", apperr.ErrWrite, err)
	}
	review.ID = id
	c.scope.Counter("review_created").Inc(1)
	c.publish(ctx, model.ReviewEventTypeCreated, review)
	return id, nil
}

// Update applies patch to a review owned by caller.
func (c *Controller) Update(ctx context.Context, caller auth.Identity, id string, patch model.ReviewPatch) error {
	if caller.UID == "" {
		return apperr.ErrUnauthenticated
	}
	if patch.IsEmpty() {
		return apperr.Invalid("review", "nothing to update")
	}
	if err := c.validate.Struct(patch); err != nil {
		return err
	}
	existing, err := c.ownedReview(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := c.repo.Update(ctx, caller.UID, id, patch); err != nil {
		return c.writeErr(err)
	}
	patch.Apply(existing)
	c.scope.Counter("review_updated").Inc(1)
	c.publish(ctx, model.ReviewEventTypeUpdated, existing)
	return nil
}

// Delete removes a review owned by caller.
func (c *Controller) Delete(ctx context.Context, caller auth.Identity, id string) error {
	if caller.UID == "" {
		return apperr.ErrUnauthenticated
	}
	existing, err := c.ownedReview(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := c.repo.Delete(ctx, caller.UID, id); err != nil {
		return c.writeErr(err)
	}
	c.scope.Counter("review_deleted").Inc(1)
	c.publish(ctx, model.ReviewEventTypeDeleted, existing)
	return nil
}

// ownedReview loads a review and rejects callers who do not own it. The
// store repeats the check on write.
func (c *Controller) ownedReview(ctx context.Context, caller auth.Identity, id string) (*model.Review, error) {
	existing, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, c.writeErr(err)
	}
	if !model.IsOwner(caller.UID, existing) {
		return nil, apperr.ErrPermission
	}
	return existing, nil
}

func (c *Controller) writeErr(err error) error {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrPermission) {
		return err
	}
	c.scope.Counter("write_error").Inc(1)
	return fmt.Errorf("%w: %w", apperr.ErrWrite, err)
}

// Get returns a review by id.
func (c *Controller) Get(ctx context.Context, id string) (*model.Review, error) {
	return c.repo.Get(ctx, id)
}

// List returns every review in store order.
func (c *Controller) List(ctx context.Context) ([]*model.Review, error) {
	return c.repo.List(ctx)
}

// ListByOwner returns the reviews written by uid.
func (c *Controller) ListByOwner(ctx context.Context, uid string) ([]*model.Review, error) {
	if uid == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return c.repo.ListByOwner(ctx, uid)
}

func (c *Controller) publish(ctx context.Context, t model.ReviewEventType, r *model.Review) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, model.NewReviewEvent(t, r, c.now())); err != nil {
		c.logger.Warn("Failed to publish review event", zap.String("reviewId", r.ID), zap.Error(err))
	}
}
