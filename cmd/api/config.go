// cmd/api/config.go
// This file loads runtime settings from command-line flags. Every flag takes
// its default from the environment (optionally seeded from a .env file), so
// the service runs unchanged from a container or a developer shell.
package main

import (
	"flag"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// serverConfig holds all the values that can be tweaked at startup.
// Fields are exported so the struct tags can be checked by validateConfig.
type serverConfig struct {
	Port int    `validate:"min=1,max=65535"`
	Env  string `validate:"oneof=development staging production"`
	DB   struct {
		DSN          string        `validate:"required"`
		MaxOpenConns int           `validate:"min=1"`
		MaxIdleConns int           `validate:"min=0,ltefield=MaxOpenConns"`
		MaxIdleTime  time.Duration `validate:"gt=0"`
	}
	Limiter struct {
		Enabled bool
		RPS     float64 `validate:"gt=0"`
		Burst   int     `validate:"min=1"`
	}
	Redis struct {
		Addr     string `validate:"omitempty,hostname_port"`
		Password string
		DB       int `validate:"min=0"`
	}
	AMQP struct {
		URL      string `validate:"omitempty,url"`
		Exchange string `validate:"required"`
	}
	CORS struct {
		TrustedOrigins []string `validate:"dive,url"`
	}
}

// env wraps an environment lookup, normally os.Getenv.
type env func(string) string

func (e env) str(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e env) integer(key string, def int) int {
	if n, err := strconv.Atoi(e(key)); err == nil {
		return n
	}
	return def
}

func (e env) float(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(e(key), 64); err == nil {
		return f
	}
	return def
}

func (e env) boolean(key string, def bool) bool {
	if b, err := strconv.ParseBool(e(key)); err == nil {
		return b
	}
	return def
}

func (e env) duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e(key)); err == nil {
		return d
	}
	return def
}

// defaultDSN prefers DB_DSN and otherwise composes a postgres URL from the
// individual DB_* variables.
func (e env) defaultDSN() string {
	if dsn := e("DB_DSN"); dsn != "" {
		return dsn
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(e.str("DB_HOST", "localhost"), e.str("DB_PORT", "5432")),
		Path:     "/" + e.str("DB_DATABASE", "moviestock"),
		RawQuery: "sslmode=" + e.str("DB_SSLMODE", "disable"),
	}
	user := e.str("DB_USER", "postgres")
	if pass := e("DB_PASSWORD"); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// loadConfig parses args over defaults read through getenv and validates the
// result.
func loadConfig(args []string, getenv func(string) string) (serverConfig, error) {
	var cfg serverConfig
	e := env(getenv)

	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", e.integer("PORT", 3000), "Server port")
	fs.StringVar(&cfg.Env, "env", e.str("APP_ENV", "development"), "Environment (development|staging|production)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", e.defaultDSN(), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", e.integer("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fs.IntVar(&cfg.DB.MaxIdleConns, "db-max-idle-conns", e.integer("DB_MAX_IDLE_CONNS", 25), "PostgreSQL max idle connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", e.duration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max connection idle time")

	fs.BoolVar(&cfg.Limiter.Enabled, "limiter-enabled", e.boolean("LIMITER_ENABLED", true), "Enable rate limiter")
	fs.Float64Var(&cfg.Limiter.RPS, "limiter-rps", e.float("LIMITER_RPS", 2), "Rate limiter maximum requests per second")
	fs.IntVar(&cfg.Limiter.Burst, "limiter-burst", e.integer("LIMITER_BURST", 4), "Rate limiter maximum burst")

	fs.StringVar(&cfg.Redis.Addr, "redis-addr", e("REDIS_ADDR"), "Redis address for a shared rate limiter (host:port)")
	fs.StringVar(&cfg.Redis.Password, "redis-password", e("REDIS_PASSWORD"), "Redis password")
	fs.IntVar(&cfg.Redis.DB, "redis-db", e.integer("REDIS_DB", 0), "Redis database number")

	fs.StringVar(&cfg.AMQP.URL, "amqp-url", e("AMQP_URL"), "RabbitMQ URL for change events (empty disables)")
	fs.StringVar(&cfg.AMQP.Exchange, "amqp-exchange", e.str("EVENTS_EXCHANGE", "moviestock.events"), "RabbitMQ exchange for change events")

	origins := e("CORS_TRUSTED_ORIGINS")
	fs.StringVar(&origins, "cors-trusted-origins", origins, "Trusted CORS origins (space separated, empty allows all)")

	if err := fs.Parse(args); err != nil {
		return serverConfig{}, err
	}
	cfg.CORS.TrustedOrigins = strings.Fields(origins)

	if err := validateConfig(cfg); err != nil {
		return serverConfig{}, err
	}
	return cfg, nil
}

var configValidate = validator.New(validator.WithRequiredStructEnabled())

func validateConfig(cfg serverConfig) error {
	return configValidate.Struct(cfg)
}
