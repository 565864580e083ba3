package grpcutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/abhishek622/movieticket/pkg/discovery"
	"github.com/abhishek622/movieticket/pkg/discovery/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestLimiter(t *testing.T) {
	l := NewLimiter(1, 2)
	assert.False(t, l.Limit())
	assert.False(t, l.Limit())
	assert.True(t, l.Limit())
}

func TestCheckHealth(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv, hs := NewServer("metadata", NewLimiter(100, 100))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	registry := memory.NewRegistry()
	require.NoError(t, registry.Register(ctx, "metadata-grpc-1", "metadata-grpc", lis.Addr().String()))

	status, err := CheckHealth(ctx, "metadata-grpc", "metadata", registry, insecure.NewCredentials())
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status)

	hs.SetServingStatus("metadata", healthpb.HealthCheckResponse_NOT_SERVING)
	status, err = CheckHealth(ctx, "metadata-grpc", "metadata", registry, insecure.NewCredentials())
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status)

	_, err = CheckHealth(ctx, "review-grpc", "review", registry, insecure.NewCredentials())
	assert.ErrorIs(t, err, discovery.ErrNotFound)
}
