package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/storefront-bff/internal/application/banner"
	"github.com/storefront-bff/internal/application/content"
	"github.com/storefront-bff/internal/application/otp"
	"github.com/storefront-bff/internal/application/reference"
	"github.com/storefront-bff/internal/application/siteconfig"
	"github.com/storefront-bff/internal/config"
	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/infrastructure/backend"
	"github.com/storefront-bff/internal/infrastructure/dynamo"
	jwtinfra "github.com/storefront-bff/internal/infrastructure/jwt"
	"github.com/storefront-bff/internal/infrastructure/kv"
	s3infra "github.com/storefront-bff/internal/infrastructure/s3"
	"github.com/storefront-bff/internal/pkg/cdn"
	transporthttp "github.com/storefront-bff/internal/transport/http"
	"github.com/storefront-bff/internal/transport/http/handler"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	setupLogger(cfg)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)

	store, closeStore, err := newDismissalStore(ctx, cfg)
	if err != nil {
		slog.Error("dismissal store unavailable", "backend", cfg.KVBackend, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	images, err := cdn.New(cfg.CDNBaseURL)
	if err != nil {
		slog.Error("invalid CDN_BASE_URL", "err", err)
		os.Exit(1)
	}

	refData, err := loadReference(ctx, cfg)
	if err != nil {
		slog.Error("reference data unavailable", "err", err)
		os.Exit(1)
	}

	// JWT verifier (optional: without it the BFF treats everyone as anonymous).
	var verifier *jwtinfra.Verifier
	if v, err := jwtinfra.NewVerifier(cfg.JWTPublicKeyPath); err == nil {
		verifier = v
	} else {
		slog.Warn("JWT verifier not available", "err", err)
	}

	siteConfig := siteconfig.New(client, siteconfig.WithTTL(cfg.SiteConfigTTL))
	if err := siteConfig.Init(ctx); err != nil {
		slog.Warn("site config warm-up failed, will retry on demand", "err", err)
	}

	deps := &transporthttp.Deps{
		SiteConfig: siteConfig,
		Banners:    banner.NewService(client, store, images),
		OTP:        otp.NewService(client),
		Content:    content.NewService(client),
		Reference:  reference.NewService(refData),
		Verifier:   verifier,
		HealthChecks: map[string]handler.Check{
			"backend": func(ctx context.Context) error {
				_, err := client.SiteConfig(ctx)
				return err
			},
		},
	}
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		deps.HealthChecks["kv"] = p.Ping
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "backend", cfg.BackendBaseURL, "kv", cfg.KVBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// newDismissalStore builds the key-value backend selected by KV_BACKEND.
func newDismissalStore(ctx context.Context, cfg *config.Config) (banner.Store, func(), error) {
	noop := func() {}
	switch cfg.KVBackend {
	case "", "memory":
		return kv.NewMemoryStore(), noop, nil
	case "redis":
		s, err := kv.NewRedisStore(ctx, cfg.RedisURL, cfg.DismissalTTL)
		if err != nil {
			return nil, noop, err
		}
		return s, closer(s), nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		// Creates the table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoKVTable)
		return dynamo.NewKVRepo(client, cfg.DynamoKVTable, cfg.DismissalTTL), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown KV_BACKEND %q: %w", cfg.KVBackend, domain.ErrBadRequest)
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Warn("close failed", "err", err)
		}
	}
}

func loadReference(ctx context.Context, cfg *config.Config) (*domain.ReferenceData, error) {
	if cfg.ReferenceS3Bucket == "" || cfg.ReferenceS3Key == "" {
		return reference.Embedded()
	}
	client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		slog.Warn("S3 unavailable, using embedded reference data", "err", err)
		return reference.Embedded()
	}
	return reference.Load(ctx, s3infra.NewStore(client, cfg.ReferenceS3Bucket), cfg.ReferenceS3Key)
}
