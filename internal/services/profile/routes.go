package profile

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты профиля, настроек и дашборда
func (s *ProfileService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	// Группа /api общая с публичными маршрутами авторизации,
	// поэтому middleware подключается к каждому маршруту отдельно
	app.Get("/api/profile", authMiddleware, s.GetProfile)
	app.Put("/api/profile", authMiddleware, s.UpdateProfile)
	app.Post("/api/profile/identity-document", authMiddleware, s.UploadIdentityDocument)
	app.Get("/api/profile/:id", authMiddleware, s.GetPublicProfile)

	app.Get("/api/upload/params", authMiddleware, s.GetUploadParams)

	app.Get("/api/settings", authMiddleware, s.GetSettings)
	app.Put("/api/settings", authMiddleware, s.UpdateSettings)

	app.Get("/api/dashboard", authMiddleware, s.GetDashboard)
}
