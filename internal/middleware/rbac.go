package middleware

import (
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin must run after AuthRequired.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := httpx.Principal(c)
		if err != nil {
			return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
		}
		if !p.IsAdmin() {
			return httpx.Forbidden(c, "forbidden", "Admin access required")
		}
		return c.Next()
	}
}
