package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// GetSettings возвращает настройки пользователя или значения по умолчанию
func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	var st models.UserSettings
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, notifications_enabled, theme, language, updated_at
		FROM user_settings WHERE user_id = $1
	`, userID).Scan(&st.UserID, &st.NotificationsEnabled, &st.Theme, &st.Language, &st.UpdatedAt)
	if err = translate(err); err != nil {
		if errors.Is(err, ErrNotFound) {
			def := models.DefaultSettings(userID)
			return &def, nil
		}
		return nil, err
	}
	return &st, nil
}

// SaveSettings сохраняет настройки пользователя
func (s *Store) SaveSettings(ctx context.Context, st *models.UserSettings) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO user_settings (user_id, notifications_enabled, theme, language)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET notifications_enabled = EXCLUDED.notifications_enabled,
			theme = EXCLUDED.theme,
			language = EXCLUDED.language,
			updated_at = NOW()
		RETURNING updated_at
	`, st.UserID, st.NotificationsEnabled, st.Theme, st.Language).Scan(&st.UpdatedAt)
	return translate(err)
}
