package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// Срок действия initData из Telegram
const initDataExpiration = 24 * time.Hour

// Store описывает операции с профилями и сессиями
type Store interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpsertTelegramProfile(ctx context.Context, acct models.TelegramAccount) (*models.Profile, error)
	CreateSession(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*models.Session, error)
	RevokeSession(ctx context.Context, id uuid.UUID) error
}

// InitDataParser проверяет подпись initData и разбирает её
type InitDataParser func(raw string) (initdata.InitData, error)

// TelegramParser возвращает парсер initData, подписанной ботом botToken
func TelegramParser(botToken string) InitDataParser {
	return func(raw string) (initdata.InitData, error) {
		if err := initdata.Validate(raw, botToken, initDataExpiration); err != nil {
			return initdata.InitData{}, err
		}
		return initdata.Parse(raw)
	}
}

// AuthService – структура для обработки авторизации
type AuthService struct {
	store        Store
	jwtService   *utils.JWTService
	parseInit    InitDataParser
	secureCookie bool
	log          *zap.Logger
}

// NewAuthService – конструктор AuthService
func NewAuthService(store Store, jwtService *utils.JWTService, parseInit InitDataParser, secureCookie bool, log *zap.Logger) *AuthService {
	return &AuthService{
		store:        store,
		jwtService:   jwtService,
		parseInit:    parseInit,
		secureCookie: secureCookie,
		log:          log,
	}
}

// startSession создает сессию, выдаёт JWT и ставит cookie для навигации по SPA
func (s *AuthService) startSession(ctx context.Context, c fiber.Ctx, profile *models.Profile) (string, error) {
	session, err := s.store.CreateSession(ctx, profile.ID, s.jwtService.TTL())
	if err != nil {
		return "", apperr.Internal("Ошибка создания сессии", err)
	}

	token, err := s.jwtService.GenerateToken(profile.ID, session.ID)
	if err != nil {
		return "", apperr.Internal("Ошибка генерации токена", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

type registerRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	FullName   string `json:"full_name" validate:"required,max=120"`
	University string `json:"university" validate:"max=200"`
	Role       string `json:"role" validate:"omitempty,oneof=contributor seeker"`
}

// Register создает профиль по email и паролю и сразу выполняет вход
func (s *AuthService) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}
	if req.Role == "" {
		req.Role = models.RoleSeeker
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("Ошибка обработки пароля", err)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile := &models.Profile{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		University:   strings.TrimSpace(req.University),
		Role:         req.Role,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return apperr.Conflict("Пользователь с таким email уже существует")
		}
		return apperr.Internal("Ошибка создания профиля", err)
	}

	token, err := s.startSession(ctx, c, profile)
	if err != nil {
		return err
	}

	s.log.Info("зарегистрирован пользователь", zap.String("user_id", profile.ID.String()))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  profile,
	})
}

// Login выполняет вход по email и паролю
func (s *AuthService) Login(c fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	if err := utils.Validate(req); err != nil {
		return apperr.BadRequest(err.Error())
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := s.store.GetProfileByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return apperr.Internal("Ошибка получения профиля", err)
	}
	// Неизвестный email и неверный пароль неразличимы для клиента
	if profile == nil || profile.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		return apperr.Unauthorized("Неверный email или пароль")
	}

	token, err := s.startSession(ctx, c, profile)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  profile,
	})
}

// TelegramAuthHandler проверяет initData, создает профиль и сессию
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data" validate:"required"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return apperr.BadRequest("Неверный формат данных")
	}
	if err := utils.Validate(payload); err != nil {
		return apperr.BadRequest(err.Error())
	}

	data, err := s.parseInit(payload.InitData)
	if err != nil {
		s.log.Debug("отклонены данные Telegram", zap.Error(err))
		return apperr.Unauthorized("Недействительные данные Telegram")
	}
	if data.User.ID == 0 {
		return apperr.BadRequest("В данных Telegram нет пользователя")
	}

	raw, err := json.Marshal(data.User)
	if err != nil {
		return apperr.Internal("Ошибка обработки данных Telegram", err)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := s.store.UpsertTelegramProfile(ctx, models.TelegramAccount{
		TelegramID:   data.User.ID,
		Username:     data.User.Username,
		FirstName:    data.User.FirstName,
		LastName:     data.User.LastName,
		PhotoURL:     data.User.PhotoURL,
		IsPremium:    data.User.IsPremium,
		LanguageCode: data.User.LanguageCode,
		RawData:      raw,
	})
	if err != nil {
		return apperr.Internal("Ошибка сохранения пользователя", err)
	}

	token, err := s.startSession(ctx, c, profile)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  profile,
	})
}

// Logout отзывает текущую сессию и удаляет cookie
func (s *AuthService) Logout(c fiber.Ctx) error {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		return apperr.Unauthorized("Пользователь не авторизован")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.store.RevokeSession(ctx, sessionID); err != nil {
		return apperr.Internal("Ошибка завершения сессии", err)
	}

	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(fiber.Map{"success": true})
}
