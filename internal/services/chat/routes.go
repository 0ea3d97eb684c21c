package chat

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/chats", authMiddleware)

	api.Get("/", s.GetChats)
	api.Get("/active", s.GetActiveChat)
	api.Post("/open", s.OpenChat)
	api.Post("/send", s.SendMessage)
	api.Get("/:key", s.GetChat)
	api.Delete("/:key", s.DeleteChat)
}
