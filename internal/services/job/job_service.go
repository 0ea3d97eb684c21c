package job

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// Store описывает операции с работами
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListOpenJobs(ctx context.Context, exclude uuid.UUID) ([]models.Job, error)
	ListJobsByMaker(ctx context.Context, maker uuid.UUID) ([]models.Job, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// JobService представляет сервис для работы с опубликованными работами
type JobService struct {
	store Store
	log   *zap.Logger
}

// NewJobService создает новый экземпляр JobService
func NewJobService(store Store, log *zap.Logger) *JobService {
	return &JobService{store: store, log: log}
}

type createJobRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// CreateJob публикует новую работу текущего пользователя
func (s *JobService) CreateJob(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	job := &models.Job{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Maker:       userID,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return apperr.Internal("Ошибка сохранения работы", err)
	}

	s.log.Info("работа опубликована",
		zap.String("job_id", job.ID.String()),
		zap.String("maker", userID.String()),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"job":     job,
	})
}

// BrowseJobs возвращает открытые работы других пользователей
func (s *JobService) BrowseJobs(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	jobs, err := s.store.ListOpenJobs(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения работ", err)
	}

	return c.JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetMyJobs возвращает работы текущего пользователя, включая закрытые
func (s *JobService) GetMyJobs(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	jobs, err := s.store.ListJobsByMaker(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения работ", err)
	}

	return c.JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJob возвращает работу вместе с публичным профилем автора
func (s *JobService) GetJob(c fiber.Ctx) error {
	jobID, err := utils.ParseID(c.Params("id"), "ID работы")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Работа не найдена")
		}
		return apperr.Internal("Ошибка получения работы", err)
	}

	maker, err := s.store.GetProfileByID(ctx, job.Maker)
	switch {
	case err == nil:
		public := maker.PublicProfile()
		job.MakerProfile = &public
	case !errors.Is(err, db.ErrNotFound):
		s.log.Warn("не удалось получить профиль автора",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}

	return c.JSON(fiber.Map{"job": job})
}
