package utils

import (
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
)

// ParseID разбирает UUID из параметра запроса; field попадает в текст ошибки
func ParseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Неверный формат " + field)
	}
	return id, nil
}
