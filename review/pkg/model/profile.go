package model

import "time"

// Sign-in providers.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// RoleUser is the role of every self-registered user.
const RoleUser = "user"

// DefaultBiography is the biography of a freshly provisioned profile.
const DefaultBiography = "Make a ticket for your own movie review."

// UserProfile is the public profile of a user, keyed by auth uid.
type UserProfile struct {
	UID          string    `json:"uid" firestore:"-"`
	DisplayName  string    `json:"displayName" firestore:"displayName"`
	Biography    string    `json:"biography" firestore:"biography"`
	Email        string    `json:"email" firestore:"email"`
	Name         string    `json:"name" firestore:"name"`
	ProfileImage string    `json:"profileImage" firestore:"profileImage"`
	Provider     string    `json:"provider" firestore:"provider"`
	Role         string    `json:"role" firestore:"role"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ProfilePatch holds the user-editable profile fields.
type ProfilePatch struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitnil,min=1,max=20,displayname"`
	Biography   *string `json:"biography,omitempty" validate:"omitnil,max=100"`
}
