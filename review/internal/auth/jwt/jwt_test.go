package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() (*Authenticator, *time.Time) {
	a := New(func() []byte { return []byte("test-secrets") })
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	return a, &now
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuthenticator()
	idToken, err := a.Issue(auth.Identity{UID: "U101", DisplayName: "Neo", Provider: "google"}, time.Hour)
	require.NoError(t, err)

	session, err := a.CreateSession(ctx, idToken)
	require.NoError(t, err)
	id, err := a.VerifySession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "U101", id.UID)
	assert.Equal(t, "Neo", id.DisplayName)
	assert.Equal(t, "google", id.Provider)

	require.NoError(t, a.UpdateDisplayName(ctx, "U101", "The One"))
	id, err = a.VerifySession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "The One", id.DisplayName)
}

func TestRejectsInvalidTokens(t *testing.T) {
	ctx := context.Background()
	a, now := newTestAuthenticator()

	_, err := a.VerifySession(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	other := New(func() []byte { return []byte("other") })
	forged, err := other.Issue(auth.Identity{UID: "U101"}, time.Hour)
	require.NoError(t, err)
	_, err = a.VerifySession(ctx, forged)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "U101"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.VerifySession(ctx, none)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	short, err := a.Issue(auth.Identity{UID: "U101"}, time.Minute)
	require.NoError(t, err)
	*now = now.Add(2 * time.Minute)
	_, err = a.VerifySession(ctx, short)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRevokeSessions(t *testing.T) {
	ctx := context.Background()
	a, now := newTestAuthenticator()
	old, err := a.Issue(auth.Identity{UID: "U101"}, time.Hour)
	require.NoError(t, err)

	*now = now.Add(time.Second)
	require.NoError(t, a.RevokeSessions(ctx, "U101"))
	_, err = a.VerifySession(ctx, old)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	*now = now.Add(time.Second)
	fresh, err := a.Issue(auth.Identity{UID: "U101"}, time.Hour)
	require.NoError(t, err)
	_, err = a.VerifySession(ctx, fresh)
	assert.NoError(t, err)
}

func TestSignInRightAfterRevoke(t *testing.T) {
	ctx := context.Background()
	a, now := newTestAuthenticator()
	old, err := a.Issue(auth.Identity{UID: "U101"}, time.Hour)
	require.NoError(t, err)

	*now = now.Add(time.Second + 100*time.Millisecond)
	require.NoError(t, a.RevokeSessions(ctx, "U101"))
	_, err = a.VerifySession(ctx, old)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	*now = now.Add(700 * time.Millisecond)
	idToken, err := a.Issue(auth.Identity{UID: "U101"}, time.Hour)
	require.NoError(t, err)
	session, err := a.CreateSession(ctx, idToken)
	require.NoError(t, err)
	id, err := a.VerifySession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "U101", id.UID)
}
