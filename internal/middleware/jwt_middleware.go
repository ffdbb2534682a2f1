package middleware

import (
	"log"
	"strings"

	"donezo/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the Locals key under which the authenticated user's ID is
// stored for downstream handlers.
const UserIDKey = "user_id"

// AuthRequired is a Fiber middleware that resolves the bearer token to an
// authenticated user ID. Missing, forged and expired tokens all produce the
// same 401 body so external callers cannot tell them apart; the distinction
// is only logged server-side.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c)
		}

		userID, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return unauthorized(c)
		}

		// Store the authenticated identity for subsequent handlers.
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid or expired token",
	})
}

// UserID returns the authenticated user's ID stored by AuthRequired, or ""
// when the request did not pass through it.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDKey).(string)
	return userID
}
