package wishlist

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// Store описывает операции со списком желаемого
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	AddWishlistItem(ctx context.Context, userID, jobID uuid.UUID) (*models.WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	IsInWishlist(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
}

// WishlistService представляет сервис для работы со списком желаемого
type WishlistService struct {
	store Store
}

// NewWishlistService создает новый экземпляр WishlistService
func NewWishlistService(store Store) *WishlistService {
	return &WishlistService{store: store}
}

// AddToWishlist добавляет работу в список желаемого
func (s *WishlistService) AddToWishlist(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		JobID string `json:"job_id" validate:"required,uuid"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	jobID := uuid.MustParse(req.JobID)

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, существует ли работа
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Работа не найдена")
		}
		return apperr.Internal("Ошибка проверки работы", err)
	}

	item, err := s.store.AddWishlistItem(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return apperr.Conflict("Работа уже в списке желаемого")
		}
		return apperr.Internal("Ошибка добавления в список желаемого", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// RemoveFromWishlist удаляет работу из списка желаемого
func (s *WishlistService) RemoveFromWishlist(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	jobID, err := utils.ParseID(c.Params("job_id"), "ID работы")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	removed, err := s.store.RemoveWishlistItem(ctx, userID, jobID)
	if err != nil {
		return apperr.Internal("Ошибка удаления из списка желаемого", err)
	}
	if !removed {
		return apperr.NotFound("Работа не найдена в списке желаемого")
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetWishlist возвращает список желаемого пользователя
func (s *WishlistService) GetWishlist(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	items, err := s.store.ListWishlist(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения списка желаемого", err)
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// CheckWishlist проверяет, есть ли работа в списке желаемого
func (s *WishlistService) CheckWishlist(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	jobID, err := utils.ParseID(c.Params("job_id"), "ID работы")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	exists, err := s.store.IsInWishlist(ctx, userID, jobID)
	if err != nil {
		return apperr.Internal("Ошибка проверки списка желаемого", err)
	}

	return c.JSON(fiber.Map{"in_wishlist": exists})
}
