package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

const profileColumns = `id, COALESCE(email, ''), password_hash, full_name, username, university, bio,
	avatar_url, role, id_document_url, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Username, &p.University,
		&p.Bio, &p.AvatarURL, &p.Role, &p.IDDocumentURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// nullableEmail превращает пустой email в NULL, чтобы не нарушать уникальность
func nullableEmail(email string) *string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}
	return &email
}

// CreateProfile создает профиль студента
func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, password_hash, full_name, username, university, bio, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, p.ID, nullableEmail(p.Email), p.PasswordHash, p.FullName, p.Username, p.University,
		p.Bio, p.AvatarURL, p.Role).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

// GetProfileByID получает профиль по ID
func (s *Store) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// GetProfileByEmail получает профиль по email
func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, nullableEmail(email)))
}

// UpdateProfile обновляет редактируемые поля профиля
func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles
		SET full_name = $1, username = $2, university = $3, bio = $4, avatar_url = $5, role = $6,
			updated_at = NOW()
		WHERE id = $7
	`, p.FullName, p.Username, p.University, p.Bio, p.AvatarURL, p.Role, p.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetIdentityDocument сохраняет ссылку на загруженный документ
func (s *Store) SetIdentityDocument(ctx context.Context, userID uuid.UUID, url string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles SET id_document_url = $1, updated_at = NOW() WHERE id = $2
	`, url, userID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertTelegramProfile создает профиль через Telegram или обновляет данные существующего
func (s *Store) UpsertTelegramProfile(ctx context.Context, acct models.TelegramAccount) (*models.Profile, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx) // Откатываем транзакцию в случае ошибки

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM telegram_accounts WHERE telegram_id = $1
	`, acct.TelegramID).Scan(&userID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("ошибка при проверке аккаунта Telegram: %w", err)
	}

	fullName := strings.TrimSpace(acct.FirstName + " " + acct.LastName)

	if err == pgx.ErrNoRows {
		err = tx.QueryRow(ctx, `
			INSERT INTO profiles (full_name, username, avatar_url)
			VALUES ($1, $2, $3)
			RETURNING id
		`, fullName, acct.Username, acct.PhotoURL).Scan(&userID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при создании профиля: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO telegram_accounts (telegram_id, user_id, username, first_name, last_name, photo_url, is_premium, language_code, raw_data)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, acct.TelegramID, userID, acct.Username, acct.FirstName, acct.LastName, acct.PhotoURL,
			acct.IsPremium, acct.LanguageCode, acct.RawData)
		if err != nil {
			return nil, fmt.Errorf("ошибка при создании аккаунта Telegram: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE telegram_accounts
			SET username = $1, first_name = $2, last_name = $3, photo_url = $4,
				is_premium = $5, language_code = $6, raw_data = $7, updated_at = NOW()
			WHERE telegram_id = $8
		`, acct.Username, acct.FirstName, acct.LastName, acct.PhotoURL,
			acct.IsPremium, acct.LanguageCode, acct.RawData, acct.TelegramID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при обновлении аккаунта Telegram: %w", err)
		}
	}

	profile, err := scanProfile(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении профиля: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return profile, nil
}

// GetDashboardSummary считает записи пользователя для вкладок дашборда
func (s *Store) GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*models.DashboardSummary, error) {
	var sum models.DashboardSummary
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs WHERE maker = $1),
			(SELECT COUNT(*) FROM jobs WHERE maker = $1 AND partner <> 'none'),
			(SELECT COUNT(*) FROM job_trade_request WHERE maker = $1),
			(SELECT COUNT(*) FROM job_trade_request WHERE requester = $1),
			(SELECT COUNT(*) FROM purchases WHERE buyer_id = $1),
			(SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1)
	`, userID).Scan(
		&sum.Jobs, &sum.MatchedJobs, &sum.IncomingRequests,
		&sum.OutgoingRequests, &sum.Purchases, &sum.Wishlist,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &sum, nil
}
