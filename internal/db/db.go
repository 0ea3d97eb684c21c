package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

var (
	// ErrNotFound возвращается, когда запись не найдена
	ErrNotFound = errors.New("запись не найдена")
	// ErrDuplicate возвращается при нарушении уникальности
	ErrDuplicate = errors.New("запись уже существует")
)

// Store предоставляет доступ к таблицам маркетплейса
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// Connect инициализирует пул соединений с базой данных
func Connect(cfg *config.Config, log *zap.Logger) (*Store, error) {
	log.Info("подключение к базе данных",
		zap.String("host", cfg.DatabaseConfig.Host),
		zap.String("database", cfg.DatabaseConfig.Name),
	)

	// Создаем контекст с таймаутом для подключения
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	log.Info("✅ успешное подключение к базе данных")
	return &Store{pool: pool, log: log}, nil
}

// Close закрывает соединение с базой данных
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// GetContext возвращает контекст с таймаутом для запросов к базе данных
func GetContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// translate приводит ошибки драйвера к ошибкам пакета
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
