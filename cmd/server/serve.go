package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	config "github.com/seldo/newww/configs"
	"github.com/seldo/newww/internal/application/services"
	"github.com/seldo/newww/internal/core/ports"
	"github.com/seldo/newww/internal/infrastructure/db"
	"github.com/seldo/newww/internal/infrastructure/email"
	"github.com/seldo/newww/internal/infrastructure/health"
	"github.com/seldo/newww/internal/infrastructure/httpserver"
	"github.com/seldo/newww/internal/infrastructure/redis"
	"github.com/seldo/newww/internal/infrastructure/repositories"
)

func newServeCommand() *cobra.Command {
	var migrateOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return serve(ctx, migrateOnStart)
		},
	}

	cmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrateOnStart bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(&cfg.Log)
	logger.Info("Starting newww...")

	database, err := db.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("Connected to database successfully")

	if migrateOnStart {
		if err := database.MigrateUp(cfg.Database.MigrationsPath); err != nil {
			return err
		}
		logger.Info("Migrations applied")
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis successfully")

	notifier, err := email.NewGateway(ctx, &cfg.Email, logger)
	if err != nil {
		return err
	}

	accounts := repositories.NewAccountRepository(database, logger)
	store := repositories.NewVerificationRedisRepository(redisClient, cfg.Verification.KeyPrefix, logger)
	codec := services.NewTokenCodec()
	validator := services.NewRequestValidator()

	signup := services.NewSignupService(accounts, store, codec, notifier, validator, services.SignupConfig{
		TokenTTL:    cfg.Verification.TokenTTL,
		BaseURL:     cfg.Email.BaseURL,
		CompanyName: cfg.Email.CompanyName,
	}, logger)
	confirmation := services.NewConfirmationService(accounts, store, codec, logger)
	sessions := services.NewSessionService(cfg.Session.Secret, cfg.Session.TokenTTL)

	var rateLimiter ports.RateLimiterService
	if cfg.RateLimit.Enabled {
		rateLimiter = services.NewRateLimiterService(
			repositories.NewRateLimitRedisRepository(redisClient),
			&services.RateLimiterConfig{
				RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
				BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         cfg.RateLimit.KeyPrefix,
			}, logger)
	}

	server := httpserver.NewServer(&httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}, logger, httpserver.ServerDeps{
		Signup:             signup,
		Confirmation:       confirmation,
		Sessions:           sessions,
		RateLimiterService: rateLimiter,
		Validator:          validator,
		HealthCheckers: []ports.HealthChecker{
			health.NewDBHealthChecker(database),
			health.NewRedisHealthChecker(redisClient),
		},
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server exited")
	return nil
}
