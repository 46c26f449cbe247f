package database

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/config"
)

const redisPingTimeout = 5 * time.Second

// RedisOptions builds client options for the rate limiter. REDIS_URL, when
// set, replaces the host/port/password/db fields entirely.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opts, nil
	}
	if cfg.RedisHost == "" {
		return nil, fmt.Errorf("redis is not configured")
	}
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}, nil
}

// NewRedisClient connects and pings. The caller owns Close.
func NewRedisClient(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	log.WithFields(logrus.Fields{"addr": opts.Addr, "db": opts.DB}).Info("redis connected")
	return client, nil
}
