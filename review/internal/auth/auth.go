// Package auth carries the signed-in identity through request contexts and
// defines the session cookie.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/abhishek622/movieticket/review/pkg/model"
)

const (
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "firebase-session-token"
	// SessionMaxAge is the lifetime of a session.
	SessionMaxAge = 24 * time.Hour
)

// Identity is the authenticated caller.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Picture     string `json:"picture"`
	Provider    string `json:"provider"`
}

type identityKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UID != ""
}

// SessionCookie returns the cookie carrying session.
func SessionCookie(session string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int(SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie returns a cookie that removes the session.
func ClearedSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest returns the session cookie value, or the bearer token
// when no cookie is present. The bool reports whether a cookie was used.
func TokenFromRequest(req *http.Request) (token string, fromCookie bool) {
	if c, err := req.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	if h := req.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false
	}
	return "", false
}

// ProviderName maps a sign-in provider id to the stored provider name.
func ProviderName(signInProvider string) string {
	switch signInProvider {
	case "google.com", model.ProviderGoogle:
		return model.ProviderGoogle
	case "github.com", model.ProviderGitHub:
		return model.ProviderGitHub
	default:
		return model.ProviderEmail
	}
}
