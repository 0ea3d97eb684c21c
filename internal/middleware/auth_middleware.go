package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// SessionCookie хранит JWT для навигации по страницам SPA
const SessionCookie = "skillswap_session"

const (
	localsUserID    = "userID"
	localsSessionID = "sessionID"
)

// ErrSessionInactive возвращается для отозванной или истёкшей сессии
var ErrSessionInactive = errors.New("сессия неактивна")

// SessionStore отдаёт сессию по ID
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

// Authenticator проверяет токен и состояние его сессии
type Authenticator struct {
	jwtService *utils.JWTService
	sessions   SessionStore
}

// NewAuthenticator создаёт Authenticator
func NewAuthenticator(jwtService *utils.JWTService, sessions SessionStore) *Authenticator {
	return &Authenticator{jwtService: jwtService, sessions: sessions}
}

// Authenticate возвращает данные токена, если сессия активна
func (a *Authenticator) Authenticate(tokenString string) (*utils.Claims, error) {
	claims, err := a.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	session, err := a.sessions.GetSession(ctx, uuid.MustParse(claims.SessionID))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrSessionInactive
		}
		return nil, err
	}
	if session.UserID.String() != claims.UserID || !session.Active(time.Now()) {
		return nil, ErrSessionInactive
	}
	return claims, nil
}

// AuthMiddleware создаёт middleware для проверки JWT
func AuthMiddleware(auth *Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Проверяем Bearer токен
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := auth.Authenticate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		SetIdentity(c, claims.UserID, claims.SessionID)

		return c.Next()
	}
}

// SetIdentity сохраняет пользователя и сессию в контексте запроса
func SetIdentity(c fiber.Ctx, userID, sessionID string) {
	c.Locals(localsUserID, userID)
	c.Locals(localsSessionID, sessionID)
}

// UserID возвращает ID пользователя, установленный AuthMiddleware
func UserID(c fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals(localsUserID).(string)
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Пользователь не авторизован")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Неверный формат ID пользователя")
	}
	return id, nil
}

// SessionID возвращает ID сессии текущего запроса
func SessionID(c fiber.Ctx) (uuid.UUID, bool) {
	raw, _ := c.Locals(localsSessionID).(string)
	id, err := uuid.Parse(raw)
	return id, err == nil
}
