package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/abhishek622/movieticket/internal/grpcutil"
	"github.com/abhishek622/movieticket/internal/httputil"
	"github.com/abhishek622/movieticket/internal/metrics"
	"github.com/abhishek622/movieticket/metadata/internal/controller/metadata"
	tmdbgateway "github.com/abhishek622/movieticket/metadata/internal/gateway/tmdb/http"
	httphandler "github.com/abhishek622/movieticket/metadata/internal/handler/http"
	"github.com/abhishek622/movieticket/metadata/internal/repository/memory"
	"github.com/abhishek622/movieticket/metadata/internal/repository/mongo"
	"github.com/abhishek622/movieticket/metadata/internal/repository/redis"
	"github.com/abhishek622/movieticket/metadata/pkg/model"
	"github.com/abhishek622/movieticket/pkg/discovery"
	"github.com/abhishek622/movieticket/pkg/discovery/consul"
	"github.com/abhishek622/movieticket/pkg/tracing"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "metadata"

type movieCache interface {
	Get(ctx context.Context, id string) (*model.Movie, error)
	Put(ctx context.Context, id string, movie *model.Movie) error
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := loadConfig("configs/default.yaml")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	port := cfg.API.Port
	logger.Info("Starting the metadata service", zap.Int("port", port), zap.Int("grpcPort", cfg.API.GRPCPort))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Jaeger Tracing ---
	_, tracerCloser, err := tracing.NewTracer(serviceName, cfg.Jaeger.Host, cfg.Jaeger.Port, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Jaeger tracer", zap.Error(err))
	}
	defer tracerCloser.Close()

	scope, metricsHandler, metricsCloser := metrics.NewScope(serviceName, time.Second)
	defer metricsCloser.Close()

	// --- Movie cache ---
	var cache movieCache
	switch cfg.Cache.Backend {
	case "redis":
		r, err := redis.New(ctx, cfg.Cache.Redis.Address, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, cfg.Cache.Redis.TTL)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer r.Close()
		cache = r
	case "mongo":
		m, err := mongo.New(ctx, cfg.Cache.Mongo.URI, cfg.Cache.Mongo.Database)
		if err != nil {
			logger.Fatal("Failed to connect to mongo", zap.Error(err))
		}
		defer m.Close(context.Background())
		cache = m
	default:
		cache = memory.New()
	}
	logger.Info("Movie cache ready", zap.String("backend", cfg.Cache.Backend))

	if cfg.TMDB.APIKey == "" {
		logger.Warn("TMDB_API_KEY is not set, upstream calls will be rejected")
	}
	gateway := tmdbgateway.New(tmdbgateway.Config{
		BaseURL:   cfg.TMDB.BaseURL,
		APIKey:    cfg.TMDB.APIKey,
		Language:  cfg.TMDB.Language,
		Timeout:   cfg.TMDB.Timeout,
		RateLimit: cfg.TMDB.RateLimit,
		Burst:     cfg.TMDB.Burst,
	}, logger)
	ctrl := metadata.New(gateway, cache, logger, scope)

	router := httputil.NewRouter(httputil.RouterConfig{
		RequestTimeout: cfg.API.RequestTimeout,
		AllowedOrigins: cfg.API.AllowedOrigins,
		RateLimit:      cfg.API.RateLimit,
		Burst:          cfg.API.Burst,
	}, logger)
	httphandler.New(ctrl, logger).Register(router)
	router.Handle("/metrics", metricsHandler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, healthServer := grpcutil.NewServer(serviceName, grpcutil.NewLimiter(cfg.API.RateLimit, cfg.API.Burst))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.API.GRPCPort))
	if err != nil {
		logger.Fatal("Failed to listen", zap.Error(err))
	}

	// --- Service registration / health heartbeat ---
	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init metadata service registry", zap.Error(err))
	}
	instances := []discovery.Instance{
		discovery.NewInstance(serviceName, fmt.Sprintf("%s:%d", cfg.API.Host, port)),
		discovery.NewInstance(serviceName+"-grpc", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.GRPCPort)),
	}
	for _, i := range instances {
		if err := registry.Register(ctx, i.ID, i.Name, i.HostPort); err != nil {
			logger.Fatal("Failed to register service", zap.String("instanceId", i.ID), zap.Error(err))
		}
		defer registry.Deregister(context.Background(), i.ID, i.Name)
	}
	go discovery.Heartbeat(ctx, registry, time.Second, func(i discovery.Instance, err error) {
		logger.Warn("Failed to report healthy state", zap.String("instanceId", i.ID), zap.Error(err))
	}, instances...)

	go func() {
		logger.Info("Starting gRPC health server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Graceful shut down
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-sigChan
		logger.Info("Received signal, attempting graceful shutdown", zap.Any("signal", s))
		healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down HTTP server", zap.Error(err))
		}
		grpcServer.GracefulStop()
		logger.Info("Gracefully stopped the servers")
	}()

	logger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to serve HTTP", zap.Error(err))
	}
	wg.Wait()
}
