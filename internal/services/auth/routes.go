package auth

import "github.com/gofiber/fiber/v3"

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/auth/register", s.Register)
	app.Post("/api/auth/login", s.Login)
	app.Post("/api/auth/telegram", s.TelegramAuthHandler)
	app.Post("/api/auth/logout", authMiddleware, s.Logout)
}
