package trade

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты для API обменов
func (s *TradeService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/trades", authMiddleware)

	api.Post("/", s.CreateTrade)
	api.Get("/my", s.GetMyTrades)
	api.Post("/:id/accept", s.AcceptTrade)

	// Предложения по конкретной работе
	app.Get("/api/jobs/:id/trades", authMiddleware, s.GetJobTrades)
}
