package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fintrack/backend/internal/cache"
	"github.com/fintrack/backend/internal/config"
	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/handler"
	"github.com/fintrack/backend/internal/service"
	"github.com/fintrack/backend/internal/token"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	postgres, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer postgres.Close()

	if err := postgres.EnsureSchema(ctx); err != nil {
		return err
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	codec, err := token.NewCodec(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		return err
	}

	userSvc := service.NewUserService(postgres)
	roleSvc := service.NewRoleService(postgres)
	authSvc := service.NewAuthService(
		userSvc,
		db.NewRefreshTokenRepo(postgres),
		cache.NewRevocations(redisClient),
		codec,
	)

	router := handler.NewRouter(
		authSvc,
		handler.NewAuthHandler(authSvc),
		handler.NewUserHandler(userSvc),
		handler.NewRoleHandler(roleSvc),
		cfg.Server.AllowedOrigins,
	)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
