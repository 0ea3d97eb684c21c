package job

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты для API работ
func (s *JobService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/jobs", authMiddleware)

	api.Post("/", s.CreateJob)
	api.Get("/", s.BrowseJobs)
	api.Get("/my", s.GetMyJobs)
	api.Get("/:id", s.GetJob)
}
