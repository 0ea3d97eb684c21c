package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

func collectJobs(rows pgx.Rows) ([]models.Job, error) {
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.ID, &job.Name, &job.Description, &job.Maker, &job.Partner, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CreateJob публикует новую работу со свободным полем partner
func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Partner = models.NoPartner
	err := s.pool.QueryRow(ctx, `
		INSERT INTO jobs (id, name, description, maker, partner)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, job.ID, job.Name, job.Description, job.Maker, job.Partner).Scan(&job.CreatedAt)
	return translate(err)
}

// GetJob получает работу по ID
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, maker, partner, created_at FROM jobs WHERE id = $1
	`, id).Scan(&job.ID, &job.Name, &job.Description, &job.Maker, &job.Partner, &job.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

// ListOpenJobs возвращает работы без партнёра, кроме работ пользователя exclude
func (s *Store) ListOpenJobs(ctx context.Context, exclude uuid.UUID) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, maker, partner, created_at
		FROM jobs
		WHERE partner = 'none' AND maker <> $1
		ORDER BY created_at DESC
	`, exclude)
	if err != nil {
		return nil, translate(err)
	}
	return collectJobs(rows)
}

// ListJobsByMaker возвращает работы, опубликованные пользователем
func (s *Store) ListJobsByMaker(ctx context.Context, maker uuid.UUID) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, maker, partner, created_at
		FROM jobs
		WHERE maker = $1
		ORDER BY created_at DESC
	`, maker)
	if err != nil {
		return nil, translate(err)
	}
	return collectJobs(rows)
}

// AssignPartner атомарно назначает партнёра, только если работа ещё открыта
// и принадлежит maker. Возвращает false, если ни одна строка не изменилась.
func (s *Store) AssignPartner(ctx context.Context, jobID, maker uuid.UUID, partner string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET partner = $1
		WHERE id = $2 AND maker = $3 AND partner = 'none'
	`, partner, jobID, maker)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}
