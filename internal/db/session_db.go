package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// CreateSession создает сессию входа с заданным сроком жизни
func (s *Store) CreateSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*models.Session, error) {
	session := models.Session{ID: uuid.New(), UserID: userID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, NOW() + $3 * INTERVAL '1 second')
		RETURNING created_at, expires_at
	`, session.ID, userID, int64(ttl.Seconds())).Scan(&session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// GetSession получает сессию по ID
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = $1
	`, id).Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt, &session.RevokedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// RevokeSession завершает сессию
func (s *Store) RevokeSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL
	`, id)
	return translate(err)
}
