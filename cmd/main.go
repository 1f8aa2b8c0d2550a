package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user_service/internal/config"
	"user_service/internal/events"
	"user_service/internal/http_server/handlers/listusers"
	"user_service/internal/http_server/handlers/login"
	"user_service/internal/http_server/handlers/logout"
	"user_service/internal/http_server/handlers/profile"
	"user_service/internal/http_server/handlers/register"
	"user_service/internal/middleware/authn"
	rateLimit "user_service/internal/middleware/ratelimit"
	"user_service/internal/storage/postgres"
	"user_service/internal/users"

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

	log.Info("starting user service", slog.String("env", cfg.Env))

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

	publisher, err := events.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer publisher.Close()

	usersService := users.New(
		log,
		storage,
		storage,
		publisher,
		cfg.Tokens.AccessTokenTTL,
		cfg.Tokens.Secret,
	)

	router := setupRouter(log, cfg, usersService, storage)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running")
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

// Гарды и лимитеры навешиваются явно на каждый маршрут: цепочка
// обрывается до хендлера, бизнес-логика про них не знает.
func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	usersService *users.Users,
	usrProvider authn.UserProvider,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	validate := validator.New()

	requireAuth := authn.RequireAuth(log, cfg.Tokens.Secret)
	requireAdmin := authn.RequireAdmin(log, usrProvider)

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit.Register(cfg.RateLimit)).
			Post("/register", register.New(log, validate, usersService))
		r.With(rateLimit.Login(cfg.RateLimit)).
			Post("/login", login.New(log, validate, usersService))
		r.With(requireAuth).
			Post("/logout", logout.New(log))
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(rateLimit.User(cfg.RateLimit))
		r.Use(requireAuth)

		r.Get("/me", profile.Get(log, usersService))
		r.Patch("/me", profile.Update(log, validate, usersService))
		r.Delete("/me", profile.Delete(log, usersService))

		r.With(requireAdmin).
			Get("/", listusers.New(log, usersService))
	})

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
