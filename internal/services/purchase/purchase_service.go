package purchase

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// Сумма хранится в NUMERIC(12,2)
const amountScale = 2

var maxAmount = decimal.New(1, 10) // 10^10

// Store описывает операции с покупками
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	CreatePurchase(ctx context.Context, p *models.Purchase) error
	ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error)
}

// PurchaseService представляет сервис покупок
type PurchaseService struct {
	store Store
	log   *zap.Logger
}

// NewPurchaseService создает новый экземпляр PurchaseService
func NewPurchaseService(store Store, log *zap.Logger) *PurchaseService {
	return &PurchaseService{store: store, log: log}
}

type createPurchaseRequest struct {
	JobID  string          `json:"job_id" validate:"required,uuid"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" validate:"max=1000"`
}

// parseAmount проверяет, что сумма положительна и не превышает лимит столбца
func parseAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperr.BadRequest("Сумма должна быть больше нуля")
	}
	if !amount.Equal(amount.Round(amountScale)) {
		return decimal.Zero, apperr.BadRequest("Сумма может содержать не больше двух знаков после запятой")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, apperr.BadRequest("Сумма слишком большая")
	}
	return amount, nil
}

// CreatePurchase оформляет покупку услуги по чужой работе
func (s *PurchaseService) CreatePurchase(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req createPurchaseRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	job, err := s.store.GetJob(ctx, uuid.MustParse(req.JobID))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Работа не найдена")
		}
		return apperr.Internal("Ошибка проверки работы", err)
	}
	if job.Maker == userID {
		return apperr.BadRequest("Нельзя купить собственную работу")
	}

	purchase := &models.Purchase{
		BuyerID: userID,
		JobID:   job.ID,
		Amount:  amount,
		Note:    strings.TrimSpace(req.Note),
	}
	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		return apperr.Internal("Ошибка оформления покупки", err)
	}

	s.log.Info("покупка оформлена",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.String("amount", amount.StringFixed(amountScale)),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"purchase": purchase,
	})
}

// GetPurchases возвращает покупки пользователя и их общую сумму
func (s *PurchaseService) GetPurchases(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	purchases, err := s.store.ListPurchases(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения покупок", err)
	}

	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(p.Amount)
	}

	return c.JSON(fiber.Map{
		"purchases": purchases,
		"count":     len(purchases),
		"total":     total.StringFixed(amountScale),
	})
}
