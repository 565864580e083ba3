package model

import "time"

// Review is a user's review ("ticket") of one movie. The movie fields are a
// snapshot taken at creation and are never re-synced.
type Review struct {
	ID               string    `json:"id" firestore:"-"`
	OwnerUserID      string    `json:"ownerUserId" firestore:"userUid"`
	OwnerDisplayName string    `json:"ownerDisplayName" firestore:"userName"`
	MovieID          string    `json:"movieId" firestore:"movieId"`
	MovieTitle       string    `json:"movieTitle" firestore:"movieTitle"`
	ReleaseYear      string    `json:"releaseYear" firestore:"releaseYear"`
	PosterImage      string    `json:"posterImage" firestore:"posterImage"`
	ReviewTitle      string    `json:"reviewTitle" firestore:"reviewTitle"`
	Rating           float64   `json:"rating" firestore:"rating"`
	ReviewText       string    `json:"reviewText" firestore:"review"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ReviewPatch holds the editable fields of a review. Nil fields are left
// unchanged.
type ReviewPatch struct {
	ReviewTitle *string  `json:"reviewTitle,omitempty" validate:"omitnil,min=1,max=50"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitnil,rating"`
	ReviewText  *string  `json:"reviewText,omitempty" validate:"omitnil,min=1,max=2000"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ReviewPatch) IsEmpty() bool {
	return p.ReviewTitle == nil && p.Rating == nil && p.ReviewText == nil
}

// Apply writes the set fields of p into r.
func (p ReviewPatch) Apply(r *Review) {
	if p.ReviewTitle != nil {
		r.ReviewTitle = *p.ReviewTitle
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.ReviewText != nil {
		r.ReviewText = *p.ReviewText
	}
}

// IsOwner reports whether currentUserID owns r. It is a presentation hint
// only; stores enforce ownership on every write.
func IsOwner(currentUserID string, r *Review) bool {
	return currentUserID != "" && r != nil && r.OwnerUserID == currentUserID
}

// ReviewEventType defines the type of a review mutation.
type ReviewEventType string

const (
	ReviewEventTypeCreated = ReviewEventType("created")
	ReviewEventTypeUpdated = ReviewEventType("updated")
	ReviewEventTypeDeleted = ReviewEventType("deleted")
)

// ReviewEvent announces a review mutation to listeners.
type ReviewEvent struct {
	Type             ReviewEventType `json:"type"`
	ReviewID         string          `json:"reviewId"`
	MovieID          string          `json:"movieId"`
	MovieTitle       string          `json:"movieTitle"`
	OwnerUserID      string          `json:"ownerUserId"`
	OwnerDisplayName string          `json:"ownerDisplayName"`
	At               time.Time       `json:"at"`
}

// NewReviewEvent creates an event of the given type for r.
func NewReviewEvent(t ReviewEventType, r *Review, at time.Time) ReviewEvent {
	return ReviewEvent{
		Type:             t,
		ReviewID:         r.ID,
		MovieID:          r.MovieID,
		MovieTitle:       r.MovieTitle,
		OwnerUserID:      r.OwnerUserID,
		OwnerDisplayName: r.OwnerDisplayName,
		At:               at,
	}
}
