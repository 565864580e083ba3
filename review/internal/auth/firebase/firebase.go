// Package firebase verifies sessions with Firebase Authentication.
package firebase

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/internal/auth"
)

// Authenticator exchanges and verifies Firebase tokens.
type Authenticator struct {
	client *fbauth.Client
}

// New creates an authenticator backed by a Firebase Auth client.
func New(client *fbauth.Client) *Authenticator {
	return &Authenticator{client: client}
}

// CreateSession exchanges a freshly issued ID token for a session cookie
// value valid for auth.SessionMaxAge.
func (a *Authenticator) CreateSession(ctx context.Context, idToken string) (string, error) {
	s, err := a.client.SessionCookie(ctx, idToken, auth.SessionMaxAge)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}
	return s, nil
}

// VerifySession verifies a session cookie value, rejecting revoked sessions.
func (a *Authenticator) VerifySession(ctx context.Context, session string) (auth.Identity, error) {
	tok, err := a.client.VerifySessionCookieAndCheckRevoked(ctx, session)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}
	return identityFromToken(tok), nil
}

// VerifyIDToken verifies a bearer ID token.
func (a *Authenticator) VerifyIDToken(ctx context.Context, idToken string) (auth.Identity, error) {
	tok, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}
	return identityFromToken(tok), nil
}

// RevokeSessions revokes every session of uid.
func (a *Authenticator) RevokeSessions(ctx context.Context, uid string) error {
	return a.client.RevokeRefreshTokens(ctx, uid)
}

// UpdateDisplayName sets the display name on the Auth user record.
func (a *Authenticator) UpdateDisplayName(ctx context.Context, uid string, name string) error {
	_, err := a.client.UpdateUser(ctx, uid, (&fbauth.UserToUpdate{}).DisplayName(name))
	return err
}

func identityFromToken(tok *fbauth.Token) auth.Identity {
	claim := func(key string) string {
		s, _ := tok.Claims[key].(string)
		return s
	}
	return auth.Identity{
		UID:         tok.UID,
		DisplayName: claim("name"),
		Email:       claim("email"),
		Name:        claim("name"),
		Picture:     claim("picture"),
		Provider:    auth.ProviderName(tok.Firebase.SignInProvider),
	}
}
