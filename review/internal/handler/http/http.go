package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/abhishek622/movieticket/review/internal/controller/review"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type reviewController interface {
	Create(ctx context.Context, owner auth.Identity, in review.CreateInput) (string, error)
	Update(ctx context.Context, caller auth.Identity, id string, patch model.ReviewPatch) error
	Delete(ctx context.Context, caller auth.Identity, id string) error
	Get(ctx context.Context, id string) (*model.Review, error)
	List(ctx context.Context) ([]*model.Review, error)
	ListByOwner(ctx context.Context, uid string) ([]*model.Review, error)
}

type profileController interface {
	EnsureProfile(ctx context.Context, id auth.Identity) (*model.UserProfile, error)
	Get(ctx context.Context, uid string) (*model.UserProfile, error)
	Update(ctx context.Context, caller auth.Identity, patch model.ProfilePatch) (*model.UserProfile, error)
}

type sessionManager interface {
	CreateSession(ctx context.Context, idToken string) (string, error)
	VerifySession(ctx context.Context, session string) (auth.Identity, error)
	VerifyIDToken(ctx context.Context, idToken string) (auth.Identity, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// Handler defines a review service HTTP handler.
type Handler struct {
	reviews       reviewController
	profiles      profileController
	sessions      sessionManager
	logger        *zap.Logger
	secureCookies bool
}

// New creates a new review service HTTP handler.
func New(reviews reviewController, profiles profileController, sessions sessionManager, logger *zap.Logger, secureCookies bool) *Handler {
	return &Handler{reviews: reviews, profiles: profiles, sessions: sessions, logger: logger, secureCookies: secureCookies}
}

// Register mounts the review service routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.Health)
	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Post("/session", h.CreateSession)
		r.Delete("/session", h.DeleteSession)
		r.Get("/reviews", h.ListReviews)
		r.Get("/reviews/{id}", h.GetReview)

		r.Group(func(r chi.Router) {
			r.Use(RequireIdentity)
			r.Post("/reviews", h.CreateReview)
			r.Patch("/reviews/{id}", h.UpdateReview)
			r.Delete("/reviews/{id}", h.DeleteReview)
			r.Get("/me", h.Me)
			r.Get("/me/reviews", h.MyReviews)
			r.Patch("/me/profile", h.UpdateProfile)
		})
	})
}

// Authenticate resolves the session cookie or bearer token into an
// identity on the request context. Requests without valid credentials
// continue anonymously.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token, fromCookie := auth.TokenFromRequest(req)
		if token == "" {
			next.ServeHTTP(w, req)
			return
		}
		verify := h.sessions.VerifyIDToken
		if fromCookie {
			verify = h.sessions.VerifySession
		}
		id, err := verify(req.Context(), token)
		if err != nil {
			h.logger.Debug("Rejected credentials", zap.Bool("cookie", fromCookie), zap.Error(err))
			next.ServeHTTP(w, req)
			return
		}
		next.ServeHTTP(w, req.WithContext(auth.NewContext(req.Context(), id)))
	})
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, ok := auth.FromContext(req.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(apperr.Notify(apperr.ErrUnauthenticated))
			return
		}
		next.ServeHTTP(w, req)
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionRequest struct {
	IDToken string `json:"idToken"`
}

// CreateSession exchanges an ID token for a session cookie and provisions
// the user's profile on first sign-in.
func (h *Handler) CreateSession(w http.ResponseWriter, req *http.Request) {
	var body sessionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.IDToken == "" {
		h.writeError(w, req, apperr.Invalid("idToken", "is required"))
		return
	}
	session, err := h.sessions.CreateSession(req.Context(), body.IDToken)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	id, err := h.sessions.VerifySession(req.Context(), session)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	p, err := h.profiles.EnsureProfile(req.Context(), id)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	http.SetCookie(w, auth.SessionCookie(session, h.secureCookies))
	h.writeJSON(w, http.StatusOK, p)
}

// DeleteSession signs the caller out.
func (h *Handler) DeleteSession(w http.ResponseWriter, req *http.Request) {
	if id, ok := auth.FromContext(req.Context()); ok {
		if err := h.sessions.RevokeSessions(req.Context(), id.UID); err != nil {
			h.logger.Warn("Failed to revoke sessions", zap.String("uid", id.UID), zap.Error(err))
		}
	}
	http.SetCookie(w, auth.ClearedSessionCookie(h.secureCookies))
	w.WriteHeader(http.StatusNoContent)
}

// ListReviews handles GET /reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, req *http.Request) {
	reviews, err := h.reviews.List(req.Context())
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reviews)
}

// GetReview handles GET /reviews/{id}.
func (h *Handler) GetReview(w http.ResponseWriter, req *http.Request) {
	r, err := h.reviews.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, r)
}

// CreateReview handles POST /reviews.
func (h *Handler) CreateReview(w http.ResponseWriter, req *http.Request) {
	var in review.CreateInput
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		h.writeError(w, req, apperr.Invalid("body", "must be a JSON object"))
		return
	}
	owner, _ := auth.FromContext(req.Context())
	if p, err := h.profiles.Get(req.Context(), owner.UID); err == nil {
		owner.DisplayName = p.DisplayName
	}
	id, err := h.reviews.Create(req.Context(), owner, in)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateReview handles PATCH /reviews/{id}.
func (h *Handler) UpdateReview(w http.ResponseWriter, req *http.Request) {
	var patch model.ReviewPatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		h.writeError(w, req, apperr.Invalid("body", "must be a JSON object"))
		return
	}
	caller, _ := auth.FromContext(req.Context())
	id := chi.URLParam(req, "id")
	if err := h.reviews.Update(req.Context(), caller, id, patch); err != nil {
		h.writeError(w, req, err)
		return
	}
	r, err := h.reviews.Get(req.Context(), id)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, r)
}

// DeleteReview handles DELETE /reviews/{id}.
func (h *Handler) DeleteReview(w http.ResponseWriter, req *http.Request) {
	caller, _ := auth.FromContext(req.Context())
	if err := h.reviews.Delete(req.Context(), caller, chi.URLParam(req, "id")); err != nil {
		h.writeError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, req *http.Request) {
	caller, _ := auth.FromContext(req.Context())
	p, err := h.profiles.Get(req.Context(), caller.UID)
	if errors.Is(err, apperr.ErrNotFound) {
		p, err = h.profiles.EnsureProfile(req.Context(), caller)
	}
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// MyReviews handles GET /me/reviews.
func (h *Handler) MyReviews(w http.ResponseWriter, req *http.Request) {
	caller, _ := auth.FromContext(req.Context())
	reviews, err := h.reviews.ListByOwner(req.Context(), caller.UID)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reviews)
}

// UpdateProfile handles PATCH /me/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, req *http.Request) {
	var patch model.ProfilePatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		h.writeError(w, req, apperr.Invalid("body", "must be a JSON object"))
		return
	}
	caller, _ := auth.FromContext(req.Context())
	p, err := h.profiles.Update(req.Context(), caller, patch)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", req.URL.Path), zap.Error(err))
	}
	h.writeJSON(w, status, apperr.Notify(err))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Response encode error", zap.Error(err))
	}
}
