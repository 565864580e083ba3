package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	metadatatestutil "github.com/abhishek622/movieticket/metadata/pkg/testutil"
	"github.com/abhishek622/movieticket/pkg/discovery/memory"
	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/abhishek622/movieticket/review/internal/auth/jwt"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/abhishek622/movieticket/review/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secrets")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tmdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix","release_date":"1999-03-31","poster_path":"/matrix.jpg"}`))
	}))
	t.Cleanup(tmdb.Close)
	metadataSrv := httptest.NewServer(metadatatestutil.NewTestMetadataHTTPHandler(tmdb.URL))
	t.Cleanup(metadataSrv.Close)

	registry := memory.NewRegistry()
	require.NoError(t, registry.Register(context.Background(), "metadata-1", "metadata", strings.TrimPrefix(metadataSrv.URL, "http://")))
	srv := httptest.NewServer(testutil.NewTestReviewHTTPHandler(registry, secret))
	t.Cleanup(srv.Close)
	return srv
}

// signIn exchanges an ID token for a session cookie held by the returned
// client's jar.
func signIn(t *testing.T, srv *httptest.Server, id auth.Identity) *http.Client {
	t.Helper()
	idToken, err := jwt.New(func() []byte { return secret }).Issue(id, time.Hour)
	require.NoError(t, err)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp := do(t, client, http.MethodPost, srv.URL+"/session", map[string]string{"idToken": idToken})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			found = true
			assert.Equal(t, 86400, c.MaxAge)
			assert.Equal(t, "/", c.Path)
		}
	}
	require.True(t, found)
	return client
}

func do(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestReviewLifecycle(t *testing.T) {
	srv := newTestServer(t)
	neo := signIn(t, srv, auth.Identity{UID: "U101", DisplayName: "Neo", Provider: "google"})
	trinity := signIn(t, srv, auth.Identity{UID: "U202", DisplayName: "Trinity", Provider: "github"})

	resp := do(t, neo, http.MethodPost, srv.URL+"/reviews", map[string]any{
		"movieId": "603", "reviewTitle": "Great", "rating": 7.5, "reviewText": "Enjoyed it",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[map[string]string](t, resp)["id"]
	require.NotEmpty(t, id)

	resp = do(t, http.DefaultClient, http.MethodGet, srv.URL+"/reviews/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	r := decode[model.Review](t, resp)
	assert.Equal(t, "U101", r.OwnerUserID)
	assert.Equal(t, "Neo", r.OwnerDisplayName)
	assert.Equal(t, "1999", r.ReleaseYear)
	assert.Equal(t, 7.5, r.Rating)

	resp = do(t, trinity, http.MethodDelete, srv.URL+"/reviews/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, neo, http.MethodPatch, srv.URL+"/reviews/"+id, map[string]any{"rating": 8})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 8.0, decode[model.Review](t, resp).Rating)

	resp = do(t, neo, http.MethodGet, srv.URL+"/me/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Review](t, resp), 1)

	resp = do(t, neo, http.MethodDelete, srv.URL+"/reviews/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.DefaultClient, http.MethodGet, srv.URL+"/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Review](t, resp))
}

func TestAnonymousWritesAreRejected(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.DefaultClient, http.MethodPost, srv.URL+"/reviews", map[string]any{"movieId": "603"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.DefaultClient, http.MethodGet, srv.URL+"/me", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateForUnknownMovie(t *testing.T) {
	srv := newTestServer(t)
	neo := signIn(t, srv, auth.Identity{UID: "U101", DisplayName: "Neo"})
	resp := do(t, neo, http.MethodPost, srv.URL+"/reviews", map[string]any{
		"movieId": "42", "reviewTitle": "Great", "rating": 7.5, "reviewText": "Enjoyed it",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", decode[map[string]string](t, resp)["title"])
}

func TestProfileRename(t *testing.T) {
	srv := newTestServer(t)
	neo := signIn(t, srv, auth.Identity{UID: "U101", DisplayName: "Neo"})
	trinity := signIn(t, srv, auth.Identity{UID: "U202", DisplayName: "Trinity"})

	resp := do(t, trinity, http.MethodPatch, srv.URL+"/me/profile", map[string]string{"displayName": "Neo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, neo, http.MethodPatch, srv.URL+"/me/profile", map[string]string{"displayName": "The One"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "The One", decode[model.UserProfile](t, resp).DisplayName)

	resp = do(t, neo, http.MethodGet, srv.URL+"/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[model.UserProfile](t, resp)
	assert.Equal(t, "The One", p.DisplayName)
	assert.Equal(t, model.DefaultBiography, p.Biography)
}

func TestSignOut(t *testing.T) {
	srv := newTestServer(t)
	neo := signIn(t, srv, auth.Identity{UID: "U101", DisplayName: "Neo"})

	resp := do(t, neo, http.MethodDelete, srv.URL+"/session", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, neo, http.MethodGet, srv.URL+"/me", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignInAgainAfterSignOut(t *testing.T) {
	srv := newTestServer(t)
	neo := signIn(t, srv, auth.Identity{UID: "U101", DisplayName: "Neo"})

	resp := do(t, neo, http.MethodDelete, srv.URL+"/session", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	neo = signIn(t, srv, auth.Identity{UID: "U101", DisplayName: "Neo"})
	resp = do(t, neo, http.MethodGet, srv.URL+"/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Neo", decode[model.UserProfile](t, resp).DisplayName)
}
