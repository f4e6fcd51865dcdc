package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civic-portal/internal/ai"
	"civic-portal/internal/config"
	"civic-portal/internal/handler"
	"civic-portal/internal/middleware"
	"civic-portal/internal/repository"
	"civic-portal/internal/router"
	"civic-portal/internal/service"
	"civic-portal/internal/sub"
	"civic-portal/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pgxpool.New(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("postgres pool init failed", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(ctx); err != nil {
		logger.Fatal("postgres unreachable", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis unreachable", zap.Error(err))
	}

	// Repositories
	usersRepo := repository.NewPostgresUsersRepo(db)
	requestsRepo := repository.NewPostgresRequestsRepo(db)
	sensorsRepo := repository.NewPostgresSensorsRepo(db)
	chatRepo := repository.NewPostgresChatRepo(db)
	announcementsRepo := repository.NewPostgresAnnouncementsRepo(db)
	photosRepo := repository.NewPostgresPhotosRepo(db)

	// Token plumbing
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)
	verifier := token.NewVerifier(cfg.JWTSecret)

	var provider token.ProviderVerifier
	if cfg.IDPJWKSURL != "" {
		p, err := token.NewJWKSVerifier(ctx, cfg.IDPIssuer, cfg.IDPAudience, cfg.IDPJWKSURL)
		if err != nil {
			logger.Fatal("identity provider verifier init failed", zap.Error(err))
		}
		provider = p
	} else {
		logger.Warn("identity provider sign-in disabled, IDP_JWKS_URL not set")
	}

	// Services
	authSvc := service.NewAuthService(usersRepo, issuer, logger)
	requestSvc := service.NewRequestService(requestsRepo, logger)
	analyticsSvc := service.NewAnalyticsService(requestsRepo)
	telemetry := service.NewTelemetryPublisher(rdb, sensorsRepo, logger)

	// Websocket fan-out
	hub := handler.NewHub(logger)
	subscriber := sub.NewEventSubscriber(rdb, hub, logger)
	if err := subscriber.Start(ctx); err != nil {
		logger.Fatal("event subscriber start failed", zap.Error(err))
	}

	telemetry.Start(cfg.SensorInterval, cfg.SensorCount)
	defer telemetry.Stop()

	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	authMW := middleware.NewAuth(verifier, provider, authSvc, logger)

	r := chi.NewRouter()
	router.SetupRoutes(r, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, provider, logger),
		Requests:      handler.NewRequestHandler(requestSvc, cfg.UploadDir, logger),
		Chat:          handler.NewChatHandler(hub, chatRepo, usersRepo, rdb, logger),
		IoT:           handler.NewIoTHandler(sensorsRepo, telemetry, cfg, logger),
		Announcements: handler.NewAnnouncementHandler(announcementsRepo, cfg.UploadDir, logger),
		Photos:        handler.NewPhotoHandler(photosRepo, cfg.UploadDir, logger),
		AI:            handler.NewAIHandler(aiClient, logger),
		Analytics:     handler.NewAnalyticsHandler(analyticsSvc),
	}, authMW, rdb, cfg.ClientURL, cfg.UploadDir)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websockets stream indefinitely
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("civic portal starting", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server exited", zap.Error(err))
		}
	}
}
