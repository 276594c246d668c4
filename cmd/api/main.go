package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/cliniqor/cliniqor-api/internal/config"
	"github.com/cliniqor/cliniqor-api/internal/email"
	"github.com/cliniqor/cliniqor-api/internal/handler"
	authHandler "github.com/cliniqor/cliniqor-api/internal/handler/auth"
	patientHandler "github.com/cliniqor/cliniqor-api/internal/handler/patient"
	visitHandler "github.com/cliniqor/cliniqor-api/internal/handler/visit"
	"github.com/cliniqor/cliniqor-api/internal/middleware"
	"github.com/cliniqor/cliniqor-api/internal/repository/postgres"
	"github.com/cliniqor/cliniqor-api/internal/router"
	authService "github.com/cliniqor/cliniqor-api/internal/service/auth"
	patientService "github.com/cliniqor/cliniqor-api/internal/service/patient"
	visitService "github.com/cliniqor/cliniqor-api/internal/service/visit"
	"github.com/cliniqor/cliniqor-api/pkg/logger"
	"github.com/cliniqor/cliniqor-api/pkg/token"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// OAuth handshake state lives in redis when configured, else in
	// process memory.
	stateTTL := time.Duration(cfg.OAuth.StateTTLMinutes) * time.Minute
	var redisClient *redis.Client
	var stateStore authService.StateStore
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse redis URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		stateStore = authService.NewRedisStateStore(redisClient, stateTTL)
	} else {
		stateStore = authService.NewMemoryStateStore(stateTTL)
	}

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	visitRepo := postgres.NewVisitRepository(db)

	tokenSvc := token.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	emailSvc := email.NewService(cfg.SMTP)

	authSvc := authService.NewService(userRepo, tokenSvc, emailSvc)
	oauth := authService.NewAuthenticator(cfg.OAuth, stateStore, userRepo, tokenSvc)
	patientSvc := patientService.NewService(patientRepo)
	visitSvc := visitService.NewService(visitRepo, patientRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc, oauth, cfg.ClientURL, authMiddleware),
		patientHandler.NewHandler(patientSvc),
		visitHandler.NewHandler(visitSvc),
		handler.NewHealthHandler(db, redisClient),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			CORSConfig:       corsConfig,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
