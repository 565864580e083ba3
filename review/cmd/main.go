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

	firebase "firebase.google.com/go/v4"
	"github.com/abhishek622/movieticket/internal/grpcutil"
	"github.com/abhishek622/movieticket/internal/httputil"
	"github.com/abhishek622/movieticket/internal/metrics"
	"github.com/abhishek622/movieticket/pkg/discovery"
	"github.com/abhishek622/movieticket/pkg/discovery/consul"
	"github.com/abhishek622/movieticket/pkg/tracing"
	"github.com/abhishek622/movieticket/review/internal/auth"
	firebaseauth "github.com/abhishek622/movieticket/review/internal/auth/firebase"
	"github.com/abhishek622/movieticket/review/internal/auth/jwt"
	"github.com/abhishek622/movieticket/review/internal/controller/profile"
	"github.com/abhishek622/movieticket/review/internal/controller/review"
	metadatagateway "github.com/abhishek622/movieticket/review/internal/gateway/metadata/http"
	httphandler "github.com/abhishek622/movieticket/review/internal/handler/http"
	"github.com/abhishek622/movieticket/review/internal/handler/ws"
	"github.com/abhishek622/movieticket/review/internal/notifier"
	"github.com/abhishek622/movieticket/review/internal/notifier/fcm"
	"github.com/abhishek622/movieticket/review/internal/notifier/kafka"
	notifiermemory "github.com/abhishek622/movieticket/review/internal/notifier/memory"
	firestorerepo "github.com/abhishek622/movieticket/review/internal/repository/firestore"
	"github.com/abhishek622/movieticket/review/internal/repository/memory"
	"github.com/abhishek622/movieticket/review/internal/repository/mysql"
	"github.com/abhishek622/movieticket/review/pkg/model"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "review"

type reviewStore interface {
	Create(ctx context.Context, callerUID string, review *model.Review) (string, error)
	Update(ctx context.Context, callerUID string, id string, patch model.ReviewPatch) error
	Delete(ctx context.Context, callerUID string, id string) error
	Get(ctx context.Context, id string) (*model.Review, error)
	List(ctx context.Context) ([]*model.Review, error)
	ListByOwner(ctx context.Context, uid string) ([]*model.Review, error)
	GetProfile(ctx context.Context, uid string) (*model.UserProfile, error)
	CreateProfile(ctx context.Context, p *model.UserProfile) error
	TouchProfile(ctx context.Context, uid string) error
	UpdateProfile(ctx context.Context, uid string, patch model.ProfilePatch) error
	DisplayNameTaken(ctx context.Context, name string, exceptUID string) (bool, error)
}

type identityProvider interface {
	CreateSession(ctx context.Context, idToken string) (string, error)
	VerifySession(ctx context.Context, session string) (auth.Identity, error)
	VerifyIDToken(ctx context.Context, idToken string) (auth.Identity, error)
	RevokeSessions(ctx context.Context, uid string) error
	UpdateDisplayName(ctx context.Context, uid string, name string) error
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := loadConfig("configs/default.yaml")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	port := cfg.API.Port
	logger.Info("Starting the review service", zap.Int("port", port), zap.Int("grpcPort", cfg.API.GRPCPort))

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

	registry, err := consul.NewRegistry(cfg.ServiceDiscovery.Consul.Address)
	if err != nil {
		logger.Fatal("Failed to init review service registry", zap.Error(err))
	}

	// --- Firebase ---
	var app *firebase.App
	if cfg.usesFirebase() {
		var opts []option.ClientOption
		if cfg.Firebase.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		}
		app, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase app", zap.Error(err))
		}
	}

	// --- Identity ---
	var identity identityProvider
	switch cfg.Auth.Provider {
	case "firebase":
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to create Firebase Auth client", zap.Error(err))
		}
		identity = firebaseauth.New(client)
	default:
		if cfg.Auth.JWTSecret == "" {
			logger.Fatal("JWT_SECRET is required when auth.provider is jwt")
		}
		secret := []byte(cfg.Auth.JWTSecret)
		identity = jwt.New(func() []byte { return secret })
	}

	// --- Review store ---
	var store reviewStore
	switch cfg.Store.Backend {
	case "firestore":
		client, err := app.Firestore(ctx)
		if err != nil {
			logger.Fatal("Failed to create Firestore client", zap.Error(err))
		}
		defer client.Close()
		store = firestorerepo.New(client)
	case "mysql":
		repo, err := mysql.New(cfg.Store.MySQL.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to mysql", zap.Error(err))
		}
		defer repo.Close()
		store = repo
	default:
		store = memory.New()
	}
	logger.Info("Review store ready", zap.String("backend", cfg.Store.Backend), zap.String("auth", cfg.Auth.Provider))

	// --- Notifiers ---
	hub := notifiermemory.NewHub(cfg.Notifier.HubBuffer)
	publishers := []notifier.Publisher{hub}
	if cfg.Notifier.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Notifier.Kafka.BootstrapServers, cfg.Notifier.Kafka.Topic, logger)
		if err != nil {
			logger.Fatal("Failed to create kafka producer", zap.Error(err))
		}
		defer producer.Close()
		publishers = append(publishers, producer)
	}
	if cfg.Notifier.FCM.Enabled {
		client, err := app.Messaging(ctx)
		if err != nil {
			logger.Fatal("Failed to create Firebase Messaging client", zap.Error(err))
		}
		publishers = append(publishers, fcm.New(client))
	}

	metadata := metadatagateway.New(registry, cfg.Metadata.Timeout)
	reviews := review.New(store, metadata, notifier.NewMulti(logger, publishers...), logger, scope)
	profiles := profile.New(store, identity, logger)

	router := httputil.NewRouter(httputil.RouterConfig{
		RequestTimeout: cfg.API.RequestTimeout,
		AllowedOrigins: cfg.API.AllowedOrigins,
		RateLimit:      cfg.API.RateLimit,
		Burst:          cfg.API.Burst,
	}, logger)
	httphandler.New(reviews, profiles, identity, logger, cfg.API.SecureCookies).Register(router)
	router.Handle("/ws/reviews", ws.New(hub, cfg.API.AllowedOrigins, logger))
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
		checkCtx, checkCancel := context.WithTimeout(ctx, 5*time.Second)
		defer checkCancel()
		status, err := grpcutil.CheckHealth(checkCtx, "metadata-grpc", "metadata", registry, insecure.NewCredentials())
		if err != nil || status != healthpb.HealthCheckResponse_SERVING {
			logger.Warn("Metadata service is not serving yet", zap.Stringer("status", status), zap.Error(err))
			return
		}
		logger.Info("Metadata service is serving")
	}()

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
