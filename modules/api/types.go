package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RegisterBody is the request body for POST /api/users.
type RegisterBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginBody is the request body for POST /api/users/login.
type LoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateBody is the request body for PUT /api/users/:id.
type UpdateBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordBody is the request body for POST /api/users/forgot-password.
type ForgotPasswordBody struct {
	Email string `json:"email"`
}

// ResetPasswordBody is the request body for POST /api/users/reset-password/:token.
type ResetPasswordBody struct {
	Password string `json:"password"`
}

// ContactBody is the request body for POST /api/contact.
type ContactBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ok writes the standard success envelope.
func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// fail writes the standard error envelope.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// serviceMessage strips the adapter's transport prefix from an error so
// the user-facing message written by the owning module survives the hop
// over the service container.
func serviceMessage(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, "request failed: "); idx >= 0 {
		msg = msg[idx+len("request failed: "):]
	}
	return msg
}
