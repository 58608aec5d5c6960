package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/httpapi"
	"github.com/MrEthical07/otpAuth/internal/config"
	"github.com/MrEthical07/otpAuth/metrics/export/prometheus"
	"github.com/MrEthical07/otpAuth/notify"
	"github.com/MrEthical07/otpAuth/store/pgstore"
	"github.com/MrEthical07/otpAuth/store/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// app is everything serve needs, plus the teardown for it.
type app struct {
	engine  *otpAuth.Engine
	handler http.Handler
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	rdb, err := connectRedis(ctx, cfg, logger, a)
	if err != nil {
		return nil, err
	}

	var store otpAuth.UserStore
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgstore.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		store = pgstore.New(pool)
	default:
		store = redisstore.New(rdb)
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	engineCfg := otpAuth.DefaultConfig()
	engineCfg.JWT.Secret = []byte(cfg.JWTSecret)
	engineCfg.Metrics.EnableLatencyHistograms = true

	engine, err := otpAuth.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithUserStore(store).
		WithNotifier(notifier).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	// Registered last so it runs first: queued mail drains while the
	// backends are still open.
	a.closers = append(a.closers, engine.Close)
	a.engine = engine

	a.handler = httpapi.NewRouter(engine, httpapi.Options{
		Production: cfg.Production(),
		TrustProxy: cfg.TrustProxy,
		Metrics:    prometheus.Handler(engine),
		Logger:     logger,
	})
	return a, nil
}

// connectRedis dials REDIS_ADDR, or starts an in-process miniredis when it is
// empty. The embedded server keeps nothing across restarts.
func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger, a *app) (redis.UniversalClient, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		if cfg.Production() {
			return nil, errors.New("REDIS_ADDR is required in production")
		}
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("embedded redis: %w", err)
		}
		a.closers = append(a.closers, mr.Close)
		addr = mr.Addr()
		logger.Warn("REDIS_ADDR not set, using embedded in-memory redis", "addr", addr)
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) (otpAuth.Notifier, error) {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, mail is written to the log")
		return notify.NewLog(logger), nil
	}
	n, err := notify.NewSMTP(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}
	return n, nil
}
