package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoPartner обозначает открытую работу без партнёра
const NoPartner = "none"

// Job представляет опубликованный запрос на услугу
type Job struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Maker       uuid.UUID `json:"maker"`
	Partner     string    `json:"partner"` // UUID партнёра или "none"
	CreatedAt   time.Time `json:"created_at"`

	// Дополнительные поля для API
	MakerProfile *Profile `json:"maker_profile,omitempty"`
}

// Open сообщает, свободна ли работа для обмена
func (j Job) Open() bool {
	return j.Partner == NoPartner
}

// WishlistItem представляет запись в списке желаемого
type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	JobID     uuid.UUID `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`

	Job *Job `json:"job,omitempty"`
}

// Purchase представляет покупку услуги по работе
type Purchase struct {
	ID        uuid.UUID       `json:"id"`
	BuyerID   uuid.UUID       `json:"buyer_id"`
	JobID     uuid.UUID       `json:"job_id"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
