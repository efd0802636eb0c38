package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "placetopay:reference:"

// ReferenceGuard reserves payment references in Redis so two concurrent
// purchases cannot send the same reference to the processor.
type ReferenceGuard struct {
	client *goredis.Client
	logger *slog.Logger
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}

func NewReferenceGuard(client *goredis.Client, logger *slog.Logger) *ReferenceGuard {
	return &ReferenceGuard{client: client, logger: logger}
}

// Reserve claims reference for ttl. It reports false when the reference is
// already held.
func (g *ReferenceGuard) Reserve(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+reference, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve %s: %w", reference, err)
	}
	if !ok {
		g.logger.Warn("reference already reserved", "reference", reference)
	}
	return ok, nil
}

func (g *ReferenceGuard) Release(ctx context.Context, reference string) error {
	if err := g.client.Del(ctx, keyPrefix+reference).Err(); err != nil {
		return fmt.Errorf("release %s: %w", reference, err)
	}
	return nil
}

// Ping is used by the health endpoint.
func (g *ReferenceGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
