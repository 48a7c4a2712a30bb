package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kotobamud/engine/pkg/state"
)

const (
	playerKeyPrefix     = "player:"
	playerNameKeyPrefix = "playername:"
)

// RedisStorage implements Storage using Redis. Player records have no
// TTL; saves are durable until explicitly removed.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis storage instance for the given
// address.
func NewRedisStorage(addr string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) SavePlayer(ctx context.Context, p *state.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	key := playerKeyPrefix + p.ID
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save player", "id", p.ID, "error", err)
		return fmt.Errorf("failed to save player: %w", err)
	}
	// Secondary index for name-based resume.
	if p.Name != "" {
		if err := r.client.Set(ctx, playerNameKeyPrefix+p.Name, p.ID, 0).Err(); err != nil {
			return fmt.Errorf("failed to index player name: %w", err)
		}
	}
	return nil
}

func (r *RedisStorage) LoadPlayer(ctx context.Context, id string) (*state.Player, error) {
	data, err := r.client.Get(ctx, playerKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	var p state.Player
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return &p, nil
}

func (r *RedisStorage) LoadPlayerByName(ctx context.Context, name string) (*state.Player, error) {
	id, err := r.client.Get(ctx, playerNameKeyPrefix+name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve player name: %w", err)
	}
	return r.LoadPlayer(ctx, id)
}
