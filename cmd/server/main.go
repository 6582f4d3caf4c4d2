package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zd8899/isitjustme/internal/adapter/httpserver"
	"github.com/zd8899/isitjustme/internal/adapter/metrics"
	"github.com/zd8899/isitjustme/internal/adapter/postgres"
	"github.com/zd8899/isitjustme/internal/adapter/redis"
	"github.com/zd8899/isitjustme/internal/app"
	"github.com/zd8899/isitjustme/internal/platform/config"
	"github.com/zd8899/isitjustme/internal/platform/logging"
	"github.com/zd8899/isitjustme/internal/vote"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, vote rate limiting disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	registry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	voteMetrics := metrics.NewVoteMetrics(registry)

	ledger := vote.NewLedger(postgres.NewVoteStore(pool), clock)

	var limiter app.RateLimiter
	if redisClient != nil {
		limiter = redis.NewVoteRateLimiter(redisClient, clock, cfg.VoteRateCapacity, cfg.VoteRatePerMinute)
	}

	appSvc := app.NewService(
		ledger,
		postgres.NewPostRepo(pool),
		postgres.NewCommentRepo(pool),
		postgres.NewUserRepo(pool),
		postgres.NewFeedRepo(pool),
		limiter,
		voteMetrics,
		clock,
		cfg.FeedPageSize,
		cfg.FeedMaxPageSize,
	)

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
	}
	if redisClient != nil {
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	srv := httpserver.NewServer(cfg, appSvc, httpMetrics, metrics.Handler(registry), healthChecks)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
