package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gamedb/igdb-proxy/pkg/logging"
	"github.com/gamedb/igdb-proxy/pkg/proxy"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig(ctx)
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Info().Str("addr", cfg.RedisURL).Msg("Connected to Redis")

	client, err := proxy.New(proxy.Config{
		Redis:        redisClient,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		BackendURL:   cfg.BackendURL,
	})
	if err != nil {
		return fmt.Errorf("proxy configuration failed: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           configureRoutes(client),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting IGDB proxy server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// configureRoutes wires the handlers behind the shared middleware chain.
func configureRoutes(client *proxy.Client) http.Handler {
	// 64 KB comfortably fits any reasonable Apicalypse query.
	requestLimitBytes := int64(64 << 10)

	apiMiddleware := alice.New(requestID, accessLog, maxRequestSize(requestLimitBytes))

	mux := http.NewServeMux()
	mux.Handle("/api/", apiMiddleware.Then(apiHandler(client)))
	mux.Handle("/api", apiMiddleware.Then(apiHandler(client)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/health", healthHandler())

	return mux
}
