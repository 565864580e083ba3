package memo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCacheCoalescesConcurrentFetches(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	c := NewCache(func(ctx context.Context, id string) ([]string, error) {
		calls.Add(1)
		<-gate
		return []string{"Action", "Science Fiction"}, nil
	})

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "603")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"Action", "Science Fiction"}, r)
	}

	_, err := c.Get(context.Background(), "603")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCacheDoesNotMemoizeFailures(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(ctx context.Context, id string) ([]string, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("tmdb unavailable")
		}
		return []string{}, nil
	})

	_, err := c.Get(context.Background(), "27205")
	require.Error(t, err)

	v, err := c.Get(context.Background(), "27205")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.NotNil(t, v)
	assert.Equal(t, int32(2), calls.Load())

	c.Forget("27205")
	assert.Equal(t, 0, c.Len())
}

func TestCacheCallerCancellationDoesNotAffectOthers(t *testing.T) {
	gate := make(chan struct{})
	c := NewCache(func(ctx context.Context, id string) (string, error) {
		<-gate
		return "Inception", ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "27205")
	assert.ErrorIs(t, err, context.Canceled)

	done := make(chan string)
	go func() {
		v, _ := c.Get(context.Background(), "27205")
		done <- v
	}()
	close(gate)
	assert.Equal(t, "Inception", <-done)
}

func TestSelectorDiscardsStaleResponse(t *testing.T) {
	release := map[string]chan struct{}{
		"27205":  make(chan struct{}),
		"157336": make(chan struct{}),
	}
	genres := map[string][]string{
		"27205":  {"Action", "Science Fiction", "Adventure"},
		"157336": {"Adventure", "Drama", "Science Fiction"},
	}

	var mu sync.Mutex
	var seen []State[string, []string]
	s := NewSelector(func(ctx context.Context, id string) ([]string, error) {
		<-release[id]
		return genres[id], nil
	}, func(st State[string, []string]) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})
	defer s.Close()

	first := s.Select(context.Background(), "27205")
	second := s.Select(context.Background(), "157336")

	close(release["157336"])
	_, err := second.Wait(context.Background())
	require.NoError(t, err)

	close(release["27205"])
	_, err = first.Wait(context.Background())
	require.NoError(t, err)
	s.Close()

	st, ok := s.State()
	require.True(t, ok)
	assert.Equal(t, "157336", st.Key)
	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, genres["157336"], st.Value)

	mu.Lock()
	defer mu.Unlock()
	for _, st := range seen {
		assert.Equal(t, "157336", st.Key, "stale state for %s applied", st.Key)
	}
}

func TestSelectorStaleResponseArrivingFirst(t *testing.T) {
	release := map[string]chan struct{}{
		"27205":  make(chan struct{}),
		"157336": make(chan struct{}),
	}
	s := NewSelector(func(ctx context.Context, id string) ([]string, error) {
		<-release[id]
		return []string{id}, nil
	}, nil)
	defer s.Close()

	first := s.Select(context.Background(), "27205")
	second := s.Select(context.Background(), "157336")

	close(release["27205"])
	_, _ = first.Wait(context.Background())

	st, _ := s.State()
	assert.Equal(t, StatusLoading, st.Status)
	assert.Equal(t, "157336", st.Key)
	assert.Nil(t, st.Value)

	close(release["157336"])
	_, _ = second.Wait(context.Background())
	s.Close()
	st, _ = s.State()
	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, []string{"157336"}, st.Value)
}

func TestSelectorCancelsSupersededFetch(t *testing.T) {
	s := NewSelector(func(ctx context.Context, id string) (string, error) {
		if id == "slow" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return id, nil
	}, nil)
	defer s.Close()

	slow := s.Select(context.Background(), "slow")
	s.Select(context.Background(), "fast")

	_, err := slow.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectorTriState(t *testing.T) {
	fetchErr := errors.New("fetch failed")
	s := NewSelector(func(ctx context.Context, id string) ([]string, error) {
		switch id {
		case "empty":
			return []string{}, nil
		case "broken":
			return nil, fetchErr
		}
		return []string{"Drama"}, nil
	}, nil)
	defer s.Close()

	_, ok := s.State()
	assert.False(t, ok)

	f := s.Select(context.Background(), "empty")
	_, _ = f.Wait(context.Background())
	st, _ := s.State()
	assert.Equal(t, StatusReady, st.Status)
	assert.NoError(t, st.Err)
	assert.Empty(t, st.Value)

	f = s.Select(context.Background(), "broken")
	_, _ = f.Wait(context.Background())
	st, _ = s.State()
	assert.Equal(t, StatusError, st.Status)
	assert.ErrorIs(t, st.Err, fetchErr)
	assert.Nil(t, st.Value)
	assert.Equal(t, "error", st.Status.String())
}
