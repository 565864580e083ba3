package memory

import (
	"context"
	"testing"
	"time"

	"github.com/abhishek622/movieticket/pkg/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.now = func() time.Time { return now }

	_, err := r.ServiceAddresses(ctx, "metadata")
	assert.ErrorIs(t, err, discovery.ErrNotFound)
	assert.ErrorIs(t, r.ReportHealthyState("metadata-1", "metadata"), ErrNotRegistered)

	require.NoError(t, r.Register(ctx, "metadata-1", "metadata", "localhost:8081"))
	addrs, err := r.ServiceAddresses(ctx, "metadata")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:8081"}, addrs)

	now = now.Add(10 * time.Second)
	_, err = r.ServiceAddresses(ctx, "metadata")
	assert.ErrorIs(t, err, discovery.ErrNotFound)

	require.NoError(t, r.ReportHealthyState("metadata-1", "metadata"))
	addrs, err = r.ServiceAddresses(ctx, "metadata")
	require.NoError(t, err)
	assert.Len(t, addrs, 1)

	require.NoError(t, r.Deregister(ctx, "metadata-1", "metadata"))
	_, err = r.ServiceAddresses(ctx, "metadata")
	assert.ErrorIs(t, err, discovery.ErrNotFound)
}

func TestGenerateInstanceID(t *testing.T) {
	a := discovery.GenerateInstanceID("review")
	b := discovery.GenerateInstanceID("review")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^review-[0-9a-f-]{36}$`, a)
}

func TestHeartbeat(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	i := discovery.NewInstance("review", "localhost:8083")
	require.NoError(t, r.Register(ctx, i.ID, i.Name, i.HostPort))
	unknown := discovery.NewInstance("ghost", "localhost:1")

	errs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		discovery.Heartbeat(ctx, r, time.Hour, func(_ discovery.Instance, err error) {
			select {
			case errs <- err:
			default:
			}
		}, i, unknown)
	}()
	assert.ErrorIs(t, <-errs, ErrNotRegistered)
	cancel()
	<-done

	addrs, err := r.ServiceAddresses(context.Background(), "review")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:8083"}, addrs)
}
