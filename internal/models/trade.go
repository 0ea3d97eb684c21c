package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeRequest представляет предложение обмена по работе.
// Запись не изменяется: принятие отражается только в поле partner работы.
type TradeRequest struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	Maker     uuid.UUID `json:"maker"`
	Requester uuid.UUID `json:"requester"`
	Offer     string    `json:"offer"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для API
	Accepted         bool     `json:"accepted"`
	Job              *Job     `json:"job,omitempty"`
	RequesterProfile *Profile `json:"requester_profile,omitempty"`
}
