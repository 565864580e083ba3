package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	metadatatestutil "github.com/abhishek622/movieticket/metadata/pkg/testutil"
	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/pkg/discovery/memory"
	"github.com/abhishek622/movieticket/pkg/memo"
	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/abhishek622/movieticket/review/internal/auth/jwt"
	"github.com/abhishek622/movieticket/review/pkg/client"
	"github.com/abhishek622/movieticket/review/pkg/listview"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/abhishek622/movieticket/review/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secrets")

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", posterURL("/matrix.jpg"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", posterURL("matrix.jpg"))
	assert.Empty(t, posterURL(""))
}

func TestRenderList(t *testing.T) {
	st := listview.State{Status: listview.StatusIdle, Reviews: []*model.Review{{
		MovieTitle: "The Matrix", ReleaseYear: "1999", ReviewTitle: "Great", Rating: 7.5,
		OwnerDisplayName: "Neo", PosterImage: "/matrix.jpg",
	}}}
	out := renderList(st, 2)
	assert.Contains(t, out, "Reviews (2 new)")
	assert.Contains(t, out, `[ 7.5] The Matrix (1999) "Great" by Neo`)
	assert.Contains(t, out, "https://image.tmdb.org/t/p/w500/matrix.jpg")

	assert.Contains(t, renderList(listview.State{Status: listview.StatusError, Message: "offline"}, 0), "offline")
}

func TestRenderDetails(t *testing.T) {
	assert.Equal(t, "movie 603: Action, Science Fiction; directed by Lana Wachowski",
		renderDetails(memo.State[string, movieDetails]{Key: "603", Status: memo.StatusReady, Value: movieDetails{
			Genres: []string{"Action", "Science Fiction"}, Directors: []string{"Lana Wachowski"},
		}}))
	assert.Equal(t, "movie 1: none; directed by unknown",
		renderDetails(memo.State[string, movieDetails]{Key: "1", Status: memo.StatusReady}))
	assert.Contains(t, renderDetails(memo.State[string, movieDetails]{Key: "2", Status: memo.StatusError}), "unavailable")
}

func newServers(t *testing.T) (reviewURL, metadataURL string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/603", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix","release_date":"1999-03-31","genres":[{"id":28,"name":"Action"}]}`))
	})
	mux.HandleFunc("/movie/603/credits", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":603,"cast":[],"crew":[{"id":9340,"name":"Lana Wachowski","job":"Director"}]}`))
	})
	tmdb := httptest.NewServer(mux)
	t.Cleanup(tmdb.Close)
	metadataSrv := httptest.NewServer(metadatatestutil.NewTestMetadataHTTPHandler(tmdb.URL))
	t.Cleanup(metadataSrv.Close)

	registry := memory.NewRegistry()
	require.NoError(t, registry.Register(context.Background(), "metadata-1", "metadata", strings.TrimPrefix(metadataSrv.URL, "http://")))
	reviewSrv := httptest.NewServer(testutil.NewTestReviewHTTPHandler(registry, secret))
	t.Cleanup(reviewSrv.Close)
	return reviewSrv.URL, metadataSrv.URL
}

func issue(t *testing.T, uid, name string) string {
	t.Helper()
	tok, err := jwt.New(func() []byte { return secret }).Issue(auth.Identity{UID: uid, DisplayName: name}, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestDetailsFetcher(t *testing.T) {
	_, metadataURL := newServers(t)
	fetch := detailsFetcher(newMetadataClient(metadataURL))

	d, err := fetch(context.Background(), "603")
	require.NoError(t, err)
	assert.Equal(t, movieDetails{Genres: []string{"Action"}, Directors: []string{"Lana Wachowski"}}, d)

	_, err = fetch(context.Background(), "42")
	assert.ErrorIs(t, err, apperr.ErrFetch)
}

func TestRunDelete(t *testing.T) {
	reviewURL, _ := newServers(t)
	ctx := context.Background()
	token := issue(t, "U101", "Neo")
	id, err := client.New(reviewURL, token, nil).Create(ctx, client.CreateReviewRequest{
		MovieID: "603", ReviewTitle: "Great", Rating: 7.5, ReviewText: "Enjoyed it",
	})
	require.NoError(t, err)
	opts := &options{reviewURL: reviewURL, token: token}

	var out bytes.Buffer
	require.NoError(t, runDelete(ctx, strings.NewReader("n\n"), &out, opts, id))
	assert.Contains(t, out.String(), `Delete "Great" for The Matrix? [y/N]`)
	assert.NotContains(t, out.String(), "Deleted.")

	other := &options{reviewURL: reviewURL, token: issue(t, "U202", "Trinity")}
	out.Reset()
	err = runDelete(ctx, strings.NewReader("y\n"), &out, other, id)
	assert.True(t, errors.Is(err, apperr.ErrPermission))
	assert.Contains(t, out.String(), "Not allowed")

	out.Reset()
	require.NoError(t, runDelete(ctx, strings.NewReader("y\n"), &out, opts, id))
	assert.Contains(t, out.String(), "Deleted.")

	list, err := client.New(reviewURL, "", nil).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
