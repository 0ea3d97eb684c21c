package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

const tradeColumns = `r.id, r.job_id, r.maker, r.requester, r.offer, r.details, r.created_at,
	(j.partner = r.requester::text) AS accepted`

func collectTradeRequests(rows pgx.Rows) ([]models.TradeRequest, error) {
	defer rows.Close()

	requests := []models.TradeRequest{}
	for rows.Next() {
		var r models.TradeRequest
		if err := rows.Scan(&r.ID, &r.JobID, &r.Maker, &r.Requester, &r.Offer, &r.Details, &r.CreatedAt, &r.Accepted); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// CreateTradeRequest сохраняет предложение обмена
func (s *Store) CreateTradeRequest(ctx context.Context, r *models.TradeRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO job_trade_request (id, job_id, maker, requester, offer, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, r.ID, r.JobID, r.Maker, r.Requester, r.Offer, r.Details).Scan(&r.CreatedAt)
	return translate(err)
}

// GetTradeRequest получает предложение обмена по ID
func (s *Store) GetTradeRequest(ctx context.Context, id uuid.UUID) (*models.TradeRequest, error) {
	var r models.TradeRequest
	err := s.pool.QueryRow(ctx, `
		SELECT `+tradeColumns+`
		FROM job_trade_request r
		JOIN jobs j ON j.id = r.job_id
		WHERE r.id = $1
	`, id).Scan(&r.ID, &r.JobID, &r.Maker, &r.Requester, &r.Offer, &r.Details, &r.CreatedAt, &r.Accepted)
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// ListTradeRequests возвращает предложения по работе, адресованные её владельцу
func (s *Store) ListTradeRequests(ctx context.Context, jobID, maker uuid.UUID) ([]models.TradeRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM job_trade_request r
		JOIN jobs j ON j.id = r.job_id
		WHERE r.job_id = $1 AND r.maker = $2
		ORDER BY r.created_at ASC
	`, jobID, maker)
	if err != nil {
		return nil, translate(err)
	}
	return collectTradeRequests(rows)
}

// ListTradeRequestsByRequester возвращает исходящие предложения пользователя
func (s *Store) ListTradeRequestsByRequester(ctx context.Context, requester uuid.UUID) ([]models.TradeRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM job_trade_request r
		JOIN jobs j ON j.id = r.job_id
		WHERE r.requester = $1
		ORDER BY r.created_at DESC
	`, requester)
	if err != nil {
		return nil, translate(err)
	}
	return collectTradeRequests(rows)
}
