package wishlist

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты для API списка желаемого
func (s *WishlistService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/wishlist", authMiddleware)

	api.Get("/", s.GetWishlist)
	api.Post("/", s.AddToWishlist)
	api.Delete("/:job_id", s.RemoveFromWishlist)
	api.Get("/:job_id/check", s.CheckWishlist)
}
