package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// spaHandler отдаёт файлы сборки SPA; для маршрутов клиента отдаётся index.html
func spaHandler(dir string) fiber.Handler {
	index := filepath.Join(dir, "index.html")

	return func(c fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return fiber.ErrNotFound
		}

		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Path())))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return c.SendFile(name)
		}
		return c.SendFile(index)
	}
}
