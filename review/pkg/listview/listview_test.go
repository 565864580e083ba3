package listview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu          sync.Mutex
	reviews     []*model.Review
	listErr     error
	deleteErr   error
	deleteCalls []string
	// block, when set, holds Delete until closed.
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeStore) List(context.Context) ([]*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]*model.Review(nil), s.reviews...), nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	s.deleteCalls = append(s.deleteCalls, id)
	block, entered := s.block, s.entered
	s.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return s.deleteErr
}

func always(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, *model.Review) bool { return answer })
}

func testReviews() []*model.Review {
	return []*model.Review{
		{ID: "r1", OwnerUserID: "U101", MovieID: "603", ReviewTitle: "Great"},
		{ID: "r2", OwnerUserID: "U202", MovieID: "27205", ReviewTitle: "Dreamy"},
	}
}

func ids(st State) []string {
	var res []string
	for _, r := range st.Reviews {
		res = append(res, r.ID)
	}
	return res
}

func TestRefresh(t *testing.T) {
	store := &fakeStore{reviews: testReviews()}
	v := New(store, always(true), nil, "U101")
	assert.Equal(t, StatusIdle, v.State().Status)
	assert.Empty(t, v.State().Reviews)

	require.NoError(t, v.Refresh(context.Background()))
	st := v.State()
	assert.Equal(t, StatusIdle, st.Status)
	if diff := cmp.Diff([]string{"r1", "r2"}, ids(st)); diff != "" {
		t.Errorf("Refresh() mismatch (-want +got):\n%s", diff)
	}

	store.listErr = apperr.ErrFetch
	assert.ErrorIs(t, v.Refresh(context.Background()), apperr.ErrFetch)
	st = v.State()
	assert.Equal(t, StatusError, st.Status)
	assert.NotEmpty(t, st.Message)
	assert.Empty(t, st.Reviews)
}

func TestCanEdit(t *testing.T) {
	rs := testReviews()
	v := New(&fakeStore{}, always(true), nil, "U101")
	assert.True(t, v.CanEdit(rs[0]))
	assert.False(t, v.CanEdit(rs[1]))
	assert.False(t, New(&fakeStore{}, always(true), nil, "").CanEdit(rs[0]))
}

func TestDeleteRemovesAfterStoreSucceeds(t *testing.T) {
	store := &fakeStore{reviews: testReviews()}
	signal := NewSignal()
	badge := NewBadge(signal)
	defer badge.Close()
	v := New(store, always(true), signal, "U101")
	require.NoError(t, v.Refresh(context.Background()))
	v.Open("r1")

	deleted, err := v.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"r1"}, store.deleteCalls)
	assert.Equal(t, []string{"r2"}, ids(v.State()))
	_, open := v.Detail()
	assert.False(t, open)
	assert.Equal(t, 1, badge.Count())

	badge.Seen()
	assert.Equal(t, 0, badge.Count())
}

func TestDeleteDeclined(t *testing.T) {
	store := &fakeStore{reviews: testReviews()}
	v := New(store, always(false), nil, "U101")
	require.NoError(t, v.Refresh(context.Background()))

	deleted, err := v.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, store.deleteCalls)
	assert.Equal(t, []string{"r1", "r2"}, ids(v.State()))
}

func TestDeleteFailureLeavesList(t *testing.T) {
	store := &fakeStore{reviews: testReviews(), deleteErr: fmtWrite()}
	signal := NewSignal()
	badge := NewBadge(signal)
	v := New(store, always(true), signal, "U101")
	require.NoError(t, v.Refresh(context.Background()))
	v.Open("r1")

	deleted, err := v.Delete(context.Background(), "r1")
	assert.ErrorIs(t, err, apperr.ErrWrite)
	assert.False(t, deleted)
	assert.Equal(t, []string{"r1", "r2"}, ids(v.State()))
	detail, open := v.Detail()
	assert.True(t, open)
	assert.Equal(t, "r1", detail)
	n, ok := v.Notification()
	require.True(t, ok)
	assert.Equal(t, "Save failed", n.Title)
	assert.Equal(t, 0, badge.Count())
}

func TestDeleteForeignReview(t *testing.T) {
	store := &fakeStore{reviews: testReviews()}
	v := New(store, always(true), nil, "U101")
	require.NoError(t, v.Refresh(context.Background()))

	_, err := v.Delete(context.Background(), "r2")
	assert.ErrorIs(t, err, apperr.ErrPermission)
	assert.Empty(t, store.deleteCalls)

	_, err = v.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteDoubleSubmit(t *testing.T) {
	store := &fakeStore{reviews: testReviews(), block: make(chan struct{}), entered: make(chan struct{})}
	v := New(store, always(true), nil, "U101")
	require.NoError(t, v.Refresh(context.Background()))

	done := make(chan error)
	go func() {
		_, err := v.Delete(context.Background(), "r1")
		done <- err
	}()
	<-store.entered

	_, err := v.Delete(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrDeleteInFlight)
	assert.Equal(t, []string{"r1", "r2"}, ids(v.State()))

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"r2"}, ids(v.State()))
	assert.Len(t, store.deleteCalls, 1)
}

func TestSignalUnsubscribe(t *testing.T) {
	s := NewSignal()
	var calls []string
	unA := s.Subscribe(func() { calls = append(calls, "a") })
	s.Subscribe(func() { calls = append(calls, "b") })

	s.Notify()
	unA()
	s.Notify()
	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func fmtWrite() error {
	return errors.Join(apperr.ErrWrite, errors.New("unavailable"))
}
