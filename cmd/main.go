package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trailmate/internal/auth"
	"trailmate/internal/config"
	"trailmate/internal/http_server/handlers/health"
	"trailmate/internal/http_server/handlers/login"
	"trailmate/internal/http_server/handlers/me"
	"trailmate/internal/http_server/handlers/refresh"
	"trailmate/internal/http_server/handlers/register"
	"trailmate/internal/http_server/handlers/tracks"
	"trailmate/internal/http_server/handlers/verify"
	"trailmate/internal/lib/hasher"
	"trailmate/internal/lib/jwt"
	"trailmate/internal/middleware/ratelimit"
	"trailmate/internal/queue"
	"trailmate/internal/rabbitmq"
	"trailmate/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting trailmate api", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	passwords, err := hasher.New(hasher.PasswordCost)
	if err != nil {
		log.Error("failed to init password hasher", slog.String("err", err.Error()))
		os.Exit(1)
	}

	refreshHasher, err := hasher.New(hasher.RefreshTokenCost)
	if err != nil {
		log.Error("failed to init refresh hasher", slog.String("err", err.Error()))
		os.Exit(1)
	}

	codec := jwt.New(cfg.Tokens.JWTSecret, cfg.Tokens.AccessTokenTTL)

	authService := auth.New(
		log,
		storage,
		storage,
		storage,
		storage,
		passwords,
		refreshHasher,
		codec,
		cfg.Tokens.RefreshTokenTTL,
		cfg.HTTPServer.BaseURL,
	)

	consumer := queue.New(log, storage, msgBroker, cfg.Queue.PollInterval, cfg.Queue.BatchSize)
	go consumer.Run(ctx)

	router := setupRouter(log, authService, storage)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	authService *auth.Auth,
	storage *postgres.PostgresRepo,
) *chi.Mux {
	validate := validator.New()
	startedAt := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.With(ratelimit.Register()).Post("/register",
			register.New(log, validate, authService),
		)
		r.With(ratelimit.Login()).Post("/login",
			login.New(log, validate, authService),
		)
		r.With(ratelimit.Refresh()).Post("/refresh",
			refresh.New(log, validate, authService),
		)
		r.With(ratelimit.Verify()).Get("/verify-email/{token}",
			verify.New(log, authService),
		)
		r.With(ratelimit.Me()).Get("/me",
			me.New(log, authService),
		)
	})

	r.Get("/health", health.New(startedAt))
	r.Get("/tracks", tracks.List(log, storage))
	r.Post("/tracks", tracks.Create(log, validate, storage))

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
