// Package cache keeps the poll cursor in Redis so restarts resume from the last poll.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"homework_status_bot/internal/domain/cursor"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "homework_bot:cursor:"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns timeouts suitable for one read and one write per poll.
func DefaultConfig(addr, password string, db int) Config {
	return Config{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisCursorStore implements cursor.Store on a single string key.
type RedisCursorStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisCursorStore(client redis.Cmdable, name string) *RedisCursorStore {
	return &RedisCursorStore{client: client, key: keyPrefix + name}
}

func (s *RedisCursorStore) Load(ctx context.Context) (int64, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, cursor.ErrNotFound
		}
		return 0, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	fromDate, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis key %s holds invalid cursor %q: %w", s.key, raw, err)
	}
	return fromDate, nil
}

func (s *RedisCursorStore) Save(ctx context.Context, fromDate int64) error {
	if err := s.client.Set(ctx, s.key, strconv.FormatInt(fromDate, 10), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
