package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// RedisStore хранит сериализованные blob-значения в Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore подключается к Redis и проверяет соединение
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get возвращает значение ключа или nil, если ключ отсутствует
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ключа %s: %w", key, err)
	}
	return data, nil
}

// Set записывает значение без срока жизни
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи ключа %s: %w", key, err)
	}
	return nil
}

// Close закрывает клиент Redis
func (s *RedisStore) Close() error {
	return s.client.Close()
}
