// Package firestore stores reviews and profiles in Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/abhishek622/movieticket/review/internal/repository"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	tracerID = "review-repository-firestore"

	reviewsCollection  = "movie-reviews"
	profilesCollection = "users"
)

// Repository defines a Firestore-backed review and profile store.
type Repository struct {
	client *firestore.Client
}

// New creates a Firestore repository on top of client.
func New(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

// Create adds a review document owned by callerUID. Timestamps are assigned
// by the server.
func (r *Repository) Create(ctx context.Context, callerUID string, review *model.Review) (string, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Create")
	defer span.End()

	if callerUID == "" || review.OwnerUserID != callerUID {
		return "", repository.ErrPermission
	}
	doc := *review
	doc.CreatedAt, doc.UpdatedAt = time.Time{}, time.Time{}
	ref, _, err := r.client.Collection(reviewsCollection).Add(ctx, doc)
	if err != nil {
		return "", mapErr(err)
	}
	return ref.ID, nil
}

// Update applies patch inside a transaction that first checks the stored
// owner against callerUID.
func (r *Repository) Update(ctx context.Context, callerUID string, id string, patch model.ReviewPatch) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Update")
	defer span.End()

	ref := r.client.Collection(reviewsCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := checkOwner(tx, ref, callerUID); err != nil {
			return err
		}
		return tx.Update(ref, reviewUpdates(patch))
	})
	return mapErr(err)
}

// Delete removes the review inside a transaction that first checks the
// stored owner against callerUID.
func (r *Repository) Delete(ctx context.Context, callerUID string, id string) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Delete")
	defer span.End()

	ref := r.client.Collection(reviewsCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := checkOwner(tx, ref, callerUID); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	return mapErr(err)
}

func checkOwner(tx *firestore.Transaction, ref *firestore.DocumentRef, callerUID string) error {
	snap, err := tx.Get(ref)
	if err != nil {
		return mapErr(err)
	}
	var stored model.Review
	if err := snap.DataTo(&stored); err != nil {
		return fmt.Errorf("decode review %s: %w", ref.ID, err)
	}
	if !model.IsOwner(callerUID, &stored) {
		return repository.ErrPermission
	}
	return nil
}

func reviewUpdates(patch model.ReviewPatch) []firestore.Update {
	var updates []firestore.Update
	if patch.ReviewTitle != nil {
		updates = append(updates, firestore.Update{Path: "reviewTitle", Value: *patch.ReviewTitle})
	}
	if patch.Rating != nil {
		updates = append(updates, firestore.Update{Path: "rating", Value: *patch.Rating})
	}
	if patch.ReviewText != nil {
		updates = append(updates, firestore.Update{Path: "review", Value: *patch.ReviewText})
	}
	return append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
}

// Get retrieves a review by id.
func (r *Repository) Get(ctx context.Context, id string) (*model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()

	snap, err := r.client.Collection(reviewsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return decodeReview(snap)
}

// List returns every review in collection order.
func (r *Repository) List(ctx context.Context) ([]*model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/List")
	defer span.End()

	return collectReviews(r.client.Collection(reviewsCollection).Documents(ctx))
}

// ListByOwner returns the reviews owned by uid.
func (r *Repository) ListByOwner(ctx context.Context, uid string) ([]*model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/ListByOwner")
	defer span.End()

	return collectReviews(r.client.Collection(reviewsCollection).Where("userUid", "==", uid).Documents(ctx))
}

func collectReviews(iter *firestore.DocumentIterator) ([]*model.Review, error) {
	defer iter.Stop()
	res := []*model.Review{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapErr(err)
		}
		rv, err := decodeReview(snap)
		if err != nil {
			return nil, err
		}
		res = append(res, rv)
	}
	return res, nil
}

func decodeReview(snap *firestore.DocumentSnapshot) (*model.Review, error) {
	var rv model.Review
	if err := snap.DataTo(&rv); err != nil {
		return nil, fmt.Errorf("decode review %s: %w", snap.Ref.ID, err)
	}
	rv.ID = snap.Ref.ID
	return &rv, nil
}

// GetProfile retrieves the profile of uid.
func (r *Repository) GetProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetProfile")
	defer span.End()

	snap, err := r.client.Collection(profilesCollection).Doc(uid).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	var p model.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	p.UID = uid
	return &p, nil
}

// CreateProfile creates the profile document of p.UID.
func (r *Repository) CreateProfile(ctx context.Context, p *model.UserProfile) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/CreateProfile")
	defer span.End()

	doc := *p
	doc.CreatedAt, doc.UpdatedAt = time.Time{}, time.Time{}
	_, err := r.client.Collection(profilesCollection).Doc(p.UID).Create(ctx, doc)
	return mapErr(err)
}

// TouchProfile refreshes the updatedAt timestamp of uid's profile.
func (r *Repository) TouchProfile(ctx context.Context, uid string) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/TouchProfile")
	defer span.End()

	_, err := r.client.Collection(profilesCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	return mapErr(err)
}

// UpdateProfile applies patch to uid's profile.
func (r *Repository) UpdateProfile(ctx context.Context, uid string, patch model.ProfilePatch) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/UpdateProfile")
	defer span.End()

	updates := []firestore.Update{{Path: "updatedAt", Value: firestore.ServerTimestamp}}
	if patch.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "displayName", Value: *patch.DisplayName})
	}
	if patch.Biography != nil {
		updates = append(updates, firestore.Update{Path: "biography", Value: *patch.Biography})
	}
	_, err := r.client.Collection(profilesCollection).Doc(uid).Update(ctx, updates)
	return mapErr(err)
}

// DisplayNameTaken reports whether a profile other than exceptUID uses name.
func (r *Repository) DisplayNameTaken(ctx context.Context, name string, exceptUID string) (bool, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/DisplayNameTaken")
	defer span.End()

	iter := r.client.Collection(profilesCollection).Where("displayName", "==", name).Limit(2).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return false, nil
		}
		if err != nil {
			return false, mapErr(err)
		}
		if snap.Ref.ID != exceptUID {
			return true, nil
		}
	}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrPermission) || errors.Is(err, repository.ErrNotFound) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %w", repository.ErrNotFound, err)
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %w", repository.ErrPermission, err)
	}
	return err
}
