// Package main is the entry point for the movies and inventory API server.
// It wires together configuration, the database connection, the rate limiter,
// the event publisher and the HTTP router.
package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/aoideee/moviestock/internal/data"
	"github.com/aoideee/moviestock/internal/events"
	"github.com/aoideee/moviestock/internal/ratelimit"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config  serverConfig
	logger  *slog.Logger
	models  data.Models
	limiter ratelimit.Limiter
	events  events.Publisher
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// A .env file is optional; anything it sets becomes a flag default.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	settings, err := loadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	db, err := openDB(settings)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connection pool established")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter, closeLimiter := newLimiter(ctx, settings, logger)
	defer closeLimiter()

	publisher := newPublisher(settings, logger)
	defer publisher.Close()

	appInstance := &applicationDependencies{
		config:  settings,
		logger:  logger,
		models:  data.NewModels(db),
		limiter: limiter,
		events:  publisher,
	}

	err = appInstance.serve()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// openDB opens a PostgreSQL connection pool using the DSN stored in settings,
// applies the pool limits, then pings the database with a 5-second timeout.
func openDB(settings serverConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", settings.DB.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(settings.DB.MaxOpenConns)
	db.SetMaxIdleConns(settings.DB.MaxIdleConns)
	db.SetConnMaxIdleTime(settings.DB.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// newLimiter picks the rate limiter backend. Redis is used when configured and
// reachable; otherwise requests are limited in process. The returned func
// releases whatever the limiter holds.
func newLimiter(ctx context.Context, settings serverConfig, logger *slog.Logger) (ratelimit.Limiter, func()) {
	if !settings.Limiter.Enabled {
		return nil, func() {}
	}

	if settings.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			logger.Info("using redis rate limiter", "address", settings.Redis.Addr)
			limiter := ratelimit.NewRedis(rdb, "rl", settings.Limiter.RPS, settings.Limiter.Burst)
			return limiter, func() { rdb.Close() }
		}

		logger.Warn("redis unavailable, falling back to in-process rate limiter", "error", err.Error())
		rdb.Close()
	}

	local := ratelimit.NewLocal(settings.Limiter.RPS, settings.Limiter.Burst, 3*time.Minute)
	go local.Run(ctx, time.Minute)
	return local, func() {}
}

// newPublisher connects to RabbitMQ when an AMQP URL is configured. Without
// one, or if the broker is unreachable, events are discarded.
func newPublisher(settings serverConfig, logger *slog.Logger) events.Publisher {
	if settings.AMQP.URL == "" {
		return events.Noop{}
	}

	p, err := events.DialAMQP(settings.AMQP.URL, settings.AMQP.Exchange)
	if err != nil {
		logger.Warn("change events disabled", "error", err.Error())
		return events.Noop{}
	}

	logger.Info("publishing change events", "exchange", settings.AMQP.Exchange)
	return p
}
