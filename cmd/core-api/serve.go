package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"qms/core-api/internal/board"
	"qms/core-api/internal/config"
	"qms/core-api/internal/httpapi"
	"qms/core-api/internal/hub"
	"qms/core-api/internal/identity"
	"qms/core-api/internal/logger"
	"qms/core-api/internal/migrations"
	"qms/core-api/internal/store/postgres"
	"qms/core-api/internal/telemetry"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "core-api"

func newServeCommand() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run pending migrations before serving (also AUTO_MIGRATE)")
	return cmd
}

func serve(parent context.Context, autoMigrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, pool, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	log := logger.WithComponent("server")

	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		Logger:      log,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	if autoMigrate || cfg.AutoMigrate {
		version, err := migrations.Up(ctx, pool)
		if err != nil {
			return err
		}
		log.Info("schema up to date", "version", version)
	}

	identitySvc, err := newIdentityService(cfg.Identity)
	if err != nil {
		return err
	}

	store := postgres.NewStore(pool, postgres.Options{TicketAttempts: cfg.TicketMaxAttempts})
	boardHub := hub.New(nil)
	refresher := board.NewRefresher(store, boardHub, nil)
	go refresher.Run(ctx)

	handler := httpapi.NewHandler(store, httpapi.Options{Board: refresher})
	auth := httpapi.NewAuthenticator(identitySvc, httpapi.AuthConfig{
		AllowedAPIKeys: cfg.Auth.AllowedAPIKeys,
		AllowedIPs:     cfg.Auth.AllowedIPs,
		TrustedProxies: cfg.Auth.TrustedProxies,
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:    cfg.RateLimitPerMinute,
		IPBurst:        cfg.RateLimitBurst,
		AppPerMinute:   cfg.AppRateLimitPerMinute,
		AppBurst:       cfg.AppRateLimitBurst,
		TrustedProxies: cfg.Auth.TrustedProxies,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(handler.Routes(), board.Handler(boardHub, refresher), auth, limiter),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("core-api listening", "addr", server.Addr, "identity_mode", cfg.Identity.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	return nil
}

// newRouter assembles the middleware chain around the API. Board sessions
// only pass through the request logger: they are long lived, public and
// polled by every display screen.
func newRouter(api, boardHandler http.Handler, auth *httpapi.Authenticator, limiter *httpapi.RateLimiter) http.Handler {
	httpLog := logger.WithComponent("http")

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/", api)
	chain := httpapi.LoggingMiddleware(httpLog, limiter.Middleware(auth.Middleware(mux)))

	root := http.NewServeMux()
	root.Handle(board.Prefix+"/", httpapi.LoggingMiddleware(httpLog, boardHandler))
	root.Handle("/", otelhttp.NewHandler(chain, serviceName))
	return root
}

func newIdentityService(cfg config.IdentityConfig) (identity.Service, error) {
	switch cfg.Mode {
	case "", "remote":
		if cfg.BaseURL == "" {
			return nil, errors.New("AUTH_API_BASE_URL is required when IDENTITY_MODE=remote")
		}
		return identity.NewClient(identity.ClientConfig{
			BaseURL:      cfg.BaseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			APIKey:       cfg.APIKey,
			Timeout:      cfg.Timeout,
		}, nil), nil
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, errors.New("IDENTITY_JWT_SECRET is required when IDENTITY_MODE=jwt")
		}
		return identity.NewJWTService(cfg.JWTSecret), nil
	case "none":
		slog.Warn("identity checks disabled, every token is accepted")
		return identity.AllowAll{}, nil
	default:
		return nil, fmt.Errorf("unknown IDENTITY_MODE %q", cfg.Mode)
	}
}
