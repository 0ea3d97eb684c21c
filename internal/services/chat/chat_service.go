package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// ChatService обслуживает HTTP API чатов
type ChatService struct {
	store *Store
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(store *Store) *ChatService {
	return &ChatService{store: store}
}

// GetChats возвращает карту диалогов пользователя
func (s *ChatService) GetChats(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	histories, err := s.store.List(ctx, userID.String())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"chats": histories,
		"count": len(histories),
	})
}

// GetActiveChat возвращает активный диалог, если он выбран
func (s *ChatService) GetActiveChat(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	key, ok := s.store.Active(userID.String())
	if !ok {
		return c.JSON(fiber.Map{"active": nil})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	history, err := s.store.Get(ctx, userID.String(), key)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"active": key,
		"chat":   history,
	})
}

// GetChat возвращает один диалог по ключу
func (s *ChatService) GetChat(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	history, err := s.store.Get(ctx, userID.String(), c.Params("key"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"chat": history})
}

type openChatRequest struct {
	Identifier     string `json:"identifier" validate:"required"`
	DisplayName    string `json:"display_name"`
	JobID          string `json:"job_id" validate:"required"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	AvatarColor    string `json:"avatar_color"`
}

// OpenChat делает диалог с собеседником по работе активным
func (s *ChatService) OpenChat(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req openChatRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	history, err := s.store.Open(ctx, userID.String(), models.ChatPartner{
		Identifier:     req.Identifier,
		DisplayName:    req.DisplayName,
		JobID:          req.JobID,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		AvatarColor:    req.AvatarColor,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"key":  history.Partner.Key(),
		"chat": history,
	})
}

// SendMessage отправляет сообщение в активный диалог
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msg, err := s.store.Send(ctx, userID.String(), req.Text)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"sent":    msg != nil,
		"message": msg,
	})
}

// DeleteChat удаляет диалог после подтверждения
func (s *ChatService) DeleteChat(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if c.Query("confirm") != "true" {
		return apperr.BadRequest("Удаление чата требует подтверждения")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	deleted, err := s.store.Delete(ctx, userID.String(), c.Params("key"))
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Чат не найден")
	}

	return c.JSON(fiber.Map{"success": true})
}
