package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nitrmart-api/internal/config"
	"github.com/nitrmart-api/internal/infrastructure/awscfg"
	"github.com/nitrmart-api/internal/infrastructure/dynamo"
	"github.com/nitrmart-api/internal/infrastructure/google"
	jwtinfra "github.com/nitrmart-api/internal/infrastructure/jwt"
	redisinfra "github.com/nitrmart-api/internal/infrastructure/redis"
	s3infra "github.com/nitrmart-api/internal/infrastructure/s3"
	"github.com/nitrmart-api/internal/infrastructure/sendgrid"
	"github.com/nitrmart-api/internal/infrastructure/smtp"
	"github.com/nitrmart-api/internal/infrastructure/sns"
	transporthttp "github.com/nitrmart-api/internal/transport/http"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	setupLogging(cfg)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		return err
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPRepo:          dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		ProductRepo:      dynamo.NewProductRepo(dynamoClient, cfg.DynamoTables.Products),
		ProductImageRepo: dynamo.NewProductImageRepo(dynamoClient, cfg.DynamoTables.ProductImages),
		ObjectStore:      s3infra.NewStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.S3BucketName, cfg.S3PublicBaseURL),
		JWTProvider:      jwtProvider,
	}

	if cfg.RedisURL != "" {
		store, err := redisinfra.NewRevocationStore(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer store.Close()
		deps.Revocations = store
	} else {
		deps.Revocations = dynamo.NewRevocationRepo(dynamoClient, cfg.DynamoTables.RevokedTokens)
	}

	switch cfg.MailProvider {
	case "sendgrid":
		deps.Mailer = sendgrid.NewMailer(cfg)
	case "smtp":
		deps.Mailer = smtp.NewMailer(cfg)
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}

	// Interfaces are only set when enabled so a disabled collaborator stays a nil interface.
	if cfg.SMSEnabled {
		snsCfg, err := awscfg.LoadRegion(ctx, cfg, cfg.SNSRegion)
		if err != nil {
			return err
		}
		deps.SMSSender = sns.NewSender(snsCfg, cfg.AWSEndpointURL)
	}
	if cfg.GoogleClientID != "" {
		deps.GoogleVerifier = google.NewVerifier(cfg.GoogleClientID)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
