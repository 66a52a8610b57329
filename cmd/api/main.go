package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/careloop/visitcare-api/internal/config"
	clientHandler "github.com/careloop/visitcare-api/internal/handler/client"
	healthHandler "github.com/careloop/visitcare-api/internal/handler/health"
	reportHandler "github.com/careloop/visitcare-api/internal/handler/report"
	scheduleHandler "github.com/careloop/visitcare-api/internal/handler/schedule"
	visitrecordHandler "github.com/careloop/visitcare-api/internal/handler/visitrecord"
	"github.com/careloop/visitcare-api/internal/middleware"
	"github.com/careloop/visitcare-api/internal/notifier"
	"github.com/careloop/visitcare-api/internal/repository/postgres"
	"github.com/careloop/visitcare-api/internal/router"
	clientService "github.com/careloop/visitcare-api/internal/service/client"
	reportService "github.com/careloop/visitcare-api/internal/service/report"
	scheduleService "github.com/careloop/visitcare-api/internal/service/schedule"
	visitrecordService "github.com/careloop/visitcare-api/internal/service/visitrecord"
	"github.com/careloop/visitcare-api/pkg/auth"
	redisbroker "github.com/careloop/visitcare-api/pkg/messaging/redis"
	"github.com/careloop/visitcare-api/pkg/validator"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := validator.RegisterCustom(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	logger := log.Logger

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Repositories
	visitRepo := postgres.NewVisitRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	serviceTypeRepo := postgres.NewServiceTypeRepository(db)
	visitRecordRepo := postgres.NewVisitRecordRepository(db)

	// Services
	publisher := notifier.NewPublisher(broker, &logger)
	scheduleSvc := scheduleService.NewService(visitRepo, publisher, &logger)
	clientSvc := clientService.NewService(clientRepo, staffRepo, serviceTypeRepo)
	recordSvc := visitrecordService.NewService(visitRecordRepo, visitRepo, &logger)
	reportSvc := reportService.NewService(
		clientRepo, visitRepo, visitRecordRepo,
		nil, // canned summaries until a text backend is configured
		reportService.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		},
		&logger,
	)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	redisClient := broker.(*redisbroker.RedisBroker).Client()

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db, redisClient),
		scheduleHandler.NewHandler(scheduleSvc),
		clientHandler.NewHandler(clientSvc),
		visitrecordHandler.NewHandler(recordSvc),
		reportHandler.NewHandler(reportSvc),
		router.RouterConfig{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "visitcare",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
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
