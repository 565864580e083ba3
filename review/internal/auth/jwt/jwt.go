// Package jwt issues and verifies HS256 session tokens for deployments
// without Firebase Authentication.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

// SecretProvider returns the HMAC signing key.
type SecretProvider func() []byte

type claims struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies signed tokens. Revocations and display
// name changes are kept in memory.
type Authenticator struct {
	secretProvider SecretProvider
	now            func() time.Time

	mu        sync.RWMutex
	revokedAt map[string]time.Time
	names     map[string]string
}

// New creates an authenticator signing with the key from secretProvider.
func New(secretProvider SecretProvider) *Authenticator {
	return &Authenticator{
		secretProvider: secretProvider,
		now:            time.Now,
		revokedAt:      map[string]time.Time{},
		names:          map[string]string{},
	}
}

// Issue signs a token for id valid for ttl.
func (a *Authenticator) Issue(id auth.Identity, ttl time.Duration) (string, error) {
	if id.UID == "" {
		return "", errors.New("empty uid")
	}
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:     id.DisplayName,
		Email:    id.Email,
		Picture:  id.Picture,
		Provider: id.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(a.secretProvider())
}

// CreateSession exchanges a valid ID token for a session token lasting
// auth.SessionMaxAge.
func (a *Authenticator) CreateSession(ctx context.Context, idToken string) (string, error) {
	id, err := a.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return a.Issue(id, auth.SessionMaxAge)
}

// VerifySession validates a session token.
func (a *Authenticator) VerifySession(ctx context.Context, session string) (auth.Identity, error) {
	return a.VerifyIDToken(ctx, session)
}

// VerifyIDToken validates token, rejecting tokens issued before the last
// revocation of their subject.
func (a *Authenticator) VerifyIDToken(_ context.Context, token string) (auth.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secretProvider(), nil
		},
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: invalid token: %w", apperr.ErrUnauthenticated, err)
	}
	if c.Subject == "" {
		return auth.Identity{}, fmt.Errorf("%w: token has no subject", apperr.ErrUnauthenticated)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if revoked, ok := a.revokedAt[c.Subject]; ok && (c.IssuedAt == nil || c.IssuedAt.Before(revoked)) {
		return auth.Identity{}, fmt.Errorf("%w: session revoked", apperr.ErrUnauthenticated)
	}
	id := auth.Identity{
		UID:         c.Subject,
		DisplayName: c.Name,
		Email:       c.Email,
		Name:        c.Name,
		Picture:     c.Picture,
		Provider:    auth.ProviderName(c.Provider),
	}
	if name, ok := a.names[c.Subject]; ok {
		id.DisplayName = name
	}
	return id, nil
}

// RevokeSessions invalidates every token of uid issued before the current
// second. Issued-at claims carry whole seconds, so tokens from the second
// of the revocation stay valid.
func (a *Authenticator) RevokeSessions(_ context.Context, uid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revokedAt[uid] = a.now().Truncate(time.Second)
	return nil
}

// UpdateDisplayName overrides the display name reported for uid.
func (a *Authenticator) UpdateDisplayName(_ context.Context, uid string, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names[uid] = name
	return nil
}
