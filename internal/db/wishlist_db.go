package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// AddWishlistItem добавляет работу в список желаемого
func (s *Store) AddWishlistItem(ctx context.Context, userID, jobID uuid.UUID) (*models.WishlistItem, error) {
	item := models.WishlistItem{ID: uuid.New(), UserID: userID, JobID: jobID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO wishlist_items (id, user_id, job_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, item.ID, userID, jobID).Scan(&item.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// RemoveWishlistItem удаляет работу из списка желаемого
func (s *Store) RemoveWishlistItem(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND job_id = $2
	`, userID, jobID)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() > 0, nil
}

// IsInWishlist проверяет, есть ли работа в списке желаемого
func (s *Store) IsInWishlist(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM wishlist_items WHERE user_id = $1 AND job_id = $2)
	`, userID, jobID).Scan(&exists)
	return exists, translate(err)
}

// ListWishlist возвращает список желаемого вместе с работами
func (s *Store) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT w.id, w.user_id, w.job_id, w.created_at,
		       j.id, j.name, j.description, j.maker, j.partner, j.created_at
		FROM wishlist_items w
		JOIN jobs j ON j.id = w.job_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		var item models.WishlistItem
		var job models.Job
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.JobID, &item.CreatedAt,
			&job.ID, &job.Name, &job.Description, &job.Maker, &job.Partner, &job.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.Job = &job
		items = append(items, item)
	}
	return items, rows.Err()
}
