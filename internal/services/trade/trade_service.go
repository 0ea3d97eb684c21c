package trade

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
	"github.com/rajivgeraev/skillswap-api/internal/websocket"
)

// Store описывает операции с предложениями обмена
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	AssignPartner(ctx context.Context, jobID, maker uuid.UUID, partner string) (bool, error)
	CreateTradeRequest(ctx context.Context, r *models.TradeRequest) error
	GetTradeRequest(ctx context.Context, id uuid.UUID) (*models.TradeRequest, error)
	ListTradeRequests(ctx context.Context, jobID, maker uuid.UUID) ([]models.TradeRequest, error)
	ListTradeRequestsByRequester(ctx context.Context, requester uuid.UUID) ([]models.TradeRequest, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Notifier доставляет события пользователю
type Notifier interface {
	SendToUser(userID string, event websocket.Event)
}

// TradeService представляет сервис для работы с обменами
type TradeService struct {
	store    Store
	notifier Notifier
	log      *zap.Logger
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(store Store, notifier Notifier, log *zap.Logger) *TradeService {
	return &TradeService{store: store, notifier: notifier, log: log}
}

type submitRequest struct {
	JobID   string `json:"job_id" validate:"required,uuid"`
	Offer   string `json:"offer" validate:"required,max=1000"`
	Details string `json:"details" validate:"max=5000"`
}

// Submit создает предложение обмена по чужой работе
func (s *TradeService) Submit(ctx context.Context, userID uuid.UUID, jobID uuid.UUID, offer, details string) (*models.TradeRequest, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Работа не найдена")
		}
		return nil, apperr.Internal("Ошибка проверки работы", err)
	}
	if job.Maker == userID {
		return nil, apperr.BadRequest("Вы не можете предложить обмен по своей работе")
	}
	if !job.Open() {
		return nil, apperr.Conflict("У работы уже есть партнёр")
	}

	request := &models.TradeRequest{
		JobID:     job.ID,
		Maker:     job.Maker,
		Requester: userID,
		Offer:     offer,
		Details:   details,
	}
	if err := s.store.CreateTradeRequest(ctx, request); err != nil {
		return nil, apperr.Internal("Ошибка создания предложения обмена", err)
	}
	request.Job = job

	s.notifier.SendToUser(job.Maker.String(), websocket.NewEvent(websocket.EventTradeRequested, "", request))
	return request, nil
}

// Accept назначает автора предложения партнёром по работе. Назначение
// выполняется одним условным UPDATE, поэтому из двух одновременных
// принятий успешно только одно.
func (s *TradeService) Accept(ctx context.Context, userID, requestID uuid.UUID) (*models.TradeRequest, error) {
	request, err := s.store.GetTradeRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Предложение обмена не найдено")
		}
		return nil, apperr.Internal("Ошибка получения предложения обмена", err)
	}

	assigned, err := s.store.AssignPartner(ctx, request.JobID, userID, request.Requester.String())
	if err != nil {
		return nil, apperr.Internal("Ошибка принятия предложения", err)
	}
	if !assigned {
		return nil, s.explainRejectedAccept(ctx, userID, request)
	}

	request.Accepted = true
	s.log.Info("предложение обмена принято",
		zap.String("trade_id", request.ID.String()),
		zap.String("job_id", request.JobID.String()),
		zap.String("partner", request.Requester.String()),
	)
	s.notifier.SendToUser(request.Requester.String(), websocket.NewEvent(websocket.EventTradeAccepted, "", request))
	return request, nil
}

// explainRejectedAccept определяет, почему условный UPDATE не изменил строку
func (s *TradeService) explainRejectedAccept(ctx context.Context, userID uuid.UUID, request *models.TradeRequest) error {
	job, err := s.store.GetJob(ctx, request.JobID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Работа не найдена")
		}
		return apperr.Internal("Ошибка проверки работы", err)
	}
	if job.Maker != userID {
		return apperr.Forbidden("Принять предложение может только автор работы")
	}
	return apperr.Conflict("У работы уже есть партнёр")
}

// CreateTrade обрабатывает POST /api/trades
func (s *TradeService) CreateTrade(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req submitRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	req.Offer = strings.TrimSpace(req.Offer)
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	request, err := s.Submit(ctx, userID, uuid.MustParse(req.JobID), req.Offer, strings.TrimSpace(req.Details))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"trade":   request,
	})
}

// GetJobTrades возвращает предложения по работе; видны только её автору
func (s *TradeService) GetJobTrades(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	jobID, err := utils.ParseID(c.Params("id"), "ID работы")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	requests, err := s.store.ListTradeRequests(ctx, jobID, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения предложений обмена", err)
	}
	s.attachRequesters(ctx, requests)

	return c.JSON(fiber.Map{
		"trades": requests,
		"count":  len(requests),
	})
}

// attachRequesters добавляет публичные профили авторов предложений.
// Профиль, который не удалось получить, пропускается.
func (s *TradeService) attachRequesters(ctx context.Context, requests []models.TradeRequest) {
	profiles := make(map[uuid.UUID]*models.Profile)
	for i := range requests {
		id := requests[i].Requester
		public, seen := profiles[id]
		if !seen {
			profile, err := s.store.GetProfileByID(ctx, id)
			switch {
			case err == nil:
				p := profile.PublicProfile()
				public = &p
			case !errors.Is(err, db.ErrNotFound):
				s.log.Warn("не удалось получить профиль автора предложения",
					zap.String("requester", id.String()),
					zap.Error(err),
				)
			}
			profiles[id] = public
		}
		requests[i].RequesterProfile = public
	}
}

// GetMyTrades возвращает исходящие предложения пользователя
func (s *TradeService) GetMyTrades(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	requests, err := s.store.ListTradeRequestsByRequester(ctx, userID)
	if err != nil {
		return apperr.Internal("Ошибка получения предложений обмена", err)
	}

	return c.JSON(fiber.Map{
		"trades": requests,
		"count":  len(requests),
	})
}

// AcceptTrade обрабатывает POST /api/trades/:id/accept.
// Нужно подтверждение: ?confirm=true или {"confirm": true}.
func (s *TradeService) AcceptTrade(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	requestID, err := utils.ParseID(c.Params("id"), "ID предложения")
	if err != nil {
		return err
	}

	confirmed := c.Query("confirm") == "true"
	if !confirmed && len(c.Body()) > 0 {
		var body struct {
			Confirm bool `json:"confirm"`
		}
		if err := c.Bind().Body(&body); err != nil {
			return apperr.BadRequest("Неверный формат данных")
		}
		confirmed = body.Confirm
	}
	if !confirmed {
		return apperr.BadRequest("Принятие предложения требует подтверждения")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	request, err := s.Accept(ctx, userID, requestID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"trade":   request,
	})
}
