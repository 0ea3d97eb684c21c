package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли участников маркетплейса
const (
	RoleContributor = "contributor" // продавец услуг
	RoleSeeker      = "seeker"      // покупатель
)

// Profile представляет профиль студента
type Profile struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email,omitempty"`
	FullName      string    `json:"full_name"`
	Username      string    `json:"username,omitempty"`
	University    string    `json:"university,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Role          string    `json:"role"`
	IDDocumentURL string    `json:"id_document_url,omitempty"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicProfile возвращает копию профиля без приватных полей
func (p Profile) PublicProfile() Profile {
	p.Email = ""
	p.IDDocumentURL = ""
	p.PasswordHash = ""
	return p
}

// TelegramAccount связывает аккаунт Telegram с профилем
type TelegramAccount struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	PhotoURL     string
	IsPremium    bool
	LanguageCode string
	RawData      []byte
}

// Session представляет сессию входа
type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active сообщает, действует ли сессия в момент now
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// UserSettings содержит пользовательские настройки
type UserSettings struct {
	UserID               uuid.UUID `json:"user_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	Theme                string    `json:"theme"`
	Language             string    `json:"language"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultSettings возвращает настройки пользователя без сохранённой записи
func DefaultSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:               userID,
		NotificationsEnabled: true,
		Theme:                "light",
		Language:             "en",
	}
}

// DashboardSummary содержит счётчики для вкладок дашборда
type DashboardSummary struct {
	Jobs             int `json:"jobs"`
	MatchedJobs      int `json:"matched_jobs"`
	IncomingRequests int `json:"incoming_requests"`
	OutgoingRequests int `json:"outgoing_requests"`
	Purchases        int `json:"purchases"`
	Wishlist         int `json:"wishlist"`
}
