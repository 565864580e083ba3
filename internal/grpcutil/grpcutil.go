package grpcutil

import (
	"context"
	"math/rand"

	"github.com/abhishek622/movieticket/pkg/discovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/ratelimit"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Limiter rejects requests above a token bucket rate.
type Limiter struct {
	l *rate.Limiter
}

// NewLimiter creates a limiter allowing limit requests per second with the
// given burst capacity.
func NewLimiter(limit int, burst int) *Limiter {
	return &Limiter{rate.NewLimiter(rate.Limit(limit), burst)}
}

// Limit returns true if the rate limit is exceeded.
func (l *Limiter) Limit() bool {
	return !l.l.Allow()
}

// NewServer creates a gRPC server with tracing, rate limiting, reflection and
// the standard health service registered. The returned health server starts
// in SERVING state for serviceName.
func NewServer(serviceName string, l *Limiter, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts,
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(ratelimit.UnaryServerInterceptor(l)),
	)
	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return srv, hs
}

// ServiceConnection attempts to select a random service instance and
// returns a gRPC connection to it.
func ServiceConnection(ctx context.Context, serviceName string, registry discovery.Registry, creds credentials.TransportCredentials) (*grpc.ClientConn, error) {
	addrs, err := registry.ServiceAddresses(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	return grpc.NewClient(
		addrs[rand.Intn(len(addrs))],
		grpc.WithTransportCredentials(creds),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
}

// CheckHealth asks a registered instance of registryName for the health of
// serviceName.
func CheckHealth(ctx context.Context, registryName string, serviceName string, registry discovery.Registry, creds credentials.TransportCredentials) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := ServiceConnection(ctx, registryName, registry, creds)
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	defer conn.Close()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
