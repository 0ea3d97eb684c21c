package purchase

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты для API покупок
func (s *PurchaseService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/purchases", authMiddleware)

	api.Get("/", s.GetPurchases)
	api.Post("/", s.CreatePurchase)
}
