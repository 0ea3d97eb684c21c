package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// CreatePurchase сохраняет покупку
func (s *Store) CreatePurchase(ctx context.Context, p *models.Purchase) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO purchases (id, buyer_id, job_id, amount, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, p.ID, p.BuyerID, p.JobID, p.Amount, p.Note).Scan(&p.CreatedAt)
	return translate(err)
}

// ListPurchases возвращает покупки пользователя
func (s *Store) ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, buyer_id, job_id, amount, note, created_at
		FROM purchases
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`, buyerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	purchases := []models.Purchase{}
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.ID, &p.BuyerID, &p.JobID, &p.Amount, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
