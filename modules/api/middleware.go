package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/nextchat/modules/auth"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
	// TokenCookieName is the session cookie set on login and register.
	TokenCookieName = "token"
)

// RequireAuth validates the session token from the Authorization header
// or, failing that, the session cookie.
func RequireAuth(authPort auth.Port) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies(TokenCookieName)
		}
		if token == "" {
			return fail(c, fiber.StatusUnauthorized, "Authentication required")
		}

		claims, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
