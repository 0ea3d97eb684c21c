package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/gate"
)

// RouteGate проверяет сессию из cookie при каждой навигации по SPA
// и перенаправляет между публичными и закрытыми экранами.
func RouteGate(auth *Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Статика и неизвестные пути проходят без проверки сессии
		if gate.Classify(c.Path()) == gate.Unknown {
			return c.Next()
		}

		authenticated := false
		if token := c.Cookies(SessionCookie); token != "" {
			if claims, err := auth.Authenticate(token); err == nil {
				authenticated = true
				SetIdentity(c, claims.UserID, claims.SessionID)
			}
		}

		if redirect, ok := gate.Resolve(c.Path(), authenticated); !ok {
			return c.Redirect().Status(fiber.StatusFound).To(redirect)
		}
		return c.Next()
	}
}

// SessionStatus сообщает SPA, есть ли активная сессия
func SessionStatus(auth *Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.JSON(fiber.Map{"authenticated": false})
		}
		claims, err := auth.Authenticate(token)
		if err != nil {
			return c.JSON(fiber.Map{"authenticated": false})
		}
		return c.JSON(fiber.Map{
			"authenticated": true,
			"user_id":       claims.UserID,
		})
	}
}
