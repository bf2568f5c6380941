package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/nextchat/domain/user"
	"github.com/example/nextchat/modules/auth"
	"github.com/example/nextchat/modules/mailer"
)

// Handlers contains the REST API handlers.
type Handlers struct {
	auth   auth.Port
	mail   mailer.Port
	logger *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(authPort auth.Port, mailPort mailer.Port) *Handlers {
	return &Handlers{
		auth:   authPort,
		mail:   mailPort,
		logger: slog.Default().With("module", "api"),
	}
}

func (h *Handlers) setSessionCookie(c *fiber.Ctx, token string, expiresIn int64) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(expiresIn),
		Path:     "/",
	})
}

func (h *Handlers) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		Path:     "/",
	})
}

func claimsFrom(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok
}

// Register handles POST /api/users.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body RegisterBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.auth.Register(c.UserContext(), body.Username, body.Email, body.Password)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, serviceMessage(err))
	}

	h.setSessionCookie(c, resp.Token, resp.ExpiresIn)
	return ok(c, fiber.StatusCreated, fiber.Map{
		"user":  resp.User,
		"token": resp.Token,
	})
}

// Login handles POST /api/users/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body LoginBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.auth.Login(c.UserContext(), body.Email, body.Password)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, serviceMessage(err))
	}

	h.setSessionCookie(c, resp.Token, resp.ExpiresIn)
	return ok(c, fiber.StatusOK, fiber.Map{
		"user":  resp.User,
		"token": resp.Token,
	})
}

// Logout handles POST /api/users/logout.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	h.clearSessionCookie(c)
	return ok(c, fiber.StatusOK, fiber.Map{
		"message": "Logged out",
	})
}

// Me handles GET /api/users/me.
func (h *Handlers) Me(c *fiber.Ctx) error {
	claims, found := claimsFrom(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	profile, err := h.auth.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	return ok(c, fiber.StatusOK, fiber.Map{"user": profile})
}

// Update handles PUT /api/users/:id. Users may only update their own
// account.
func (h *Handlers) Update(c *fiber.Ctx) error {
	claims, found := claimsFrom(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}
	if c.Params("id") != claims.UserID {
		return fail(c, fiber.StatusForbidden, "You can only update your own account")
	}

	var body UpdateBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	profile, err := h.auth.UpdateUser(c.UserContext(), auth.UpdateUserRequest{
		UserID:   claims.UserID,
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return fail(c, fiber.StatusBadRequest, serviceMessage(err))
	}
	return ok(c, fiber.StatusOK, fiber.Map{"user": profile})
}

// Delete handles DELETE /api/users/:id. Users may only delete their own
// account.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	claims, found := claimsFrom(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}
	if c.Params("id") != claims.UserID {
		return fail(c, fiber.StatusForbidden, "You can only delete your own account")
	}

	if err := h.auth.DeleteUser(c.UserContext(), claims.UserID); err != nil {
		return fail(c, fiber.StatusBadRequest, serviceMessage(err))
	}

	h.clearSessionCookie(c)
	return ok(c, fiber.StatusOK, fiber.Map{
		"message": "Account deleted",
	})
}

// ForgotPassword handles POST /api/users/forgot-password. The response
// is identical whether or not the email is registered.
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var body ForgotPasswordBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	generic := fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	}

	resp, err := h.auth.ForgotPassword(c.UserContext(), body.Email)
	if err != nil {
		msg := serviceMessage(err)
		if strings.Contains(msg, "valid email") {
			return fail(c, fiber.StatusBadRequest, msg)
		}
		// Unknown accounts get the same answer as known ones.
		return ok(c, fiber.StatusOK, generic)
	}

	if err := h.mail.SendPasswordReset(c.UserContext(), mailer.PasswordResetRequest{
		Username:   resp.Username,
		Email:      resp.Email,
		ResetToken: resp.ResetToken,
	}); err != nil {
		h.logger.Error("Failed to send password reset mail", "error", err)
	}
	return ok(c, fiber.StatusOK, generic)
}

// ResetPassword handles POST /api/users/reset-password/:token.
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return fail(c, fiber.StatusBadRequest, "Reset token is required")
	}

	var body ResetPasswordBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.auth.ResetPassword(c.UserContext(), token, body.Password); err != nil {
		msg := serviceMessage(err)
		if strings.Contains(msg, "token") {
			return fail(c, fiber.StatusUnauthorized, "Invalid or expired reset token")
		}
		return fail(c, fiber.StatusBadRequest, msg)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"message": "Password has been reset",
	})
}

// Contact handles POST /api/contact.
func (h *Handlers) Contact(c *fiber.Ctx) error {
	var body ContactBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	req := mailer.ContactRequest{
		Name:    body.Name,
		Email:   body.Email,
		Message: body.Message,
	}
	// Validate before the service hop so malformed submissions never leave
	// the request path.
	if err := mailer.ValidateContact(&req); err != nil {
		var verr *mailer.ValidationError
		if errors.As(err, &verr) {
			return fail(c, fiber.StatusBadRequest, verr.Message)
		}
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.mail.SendContact(c.UserContext(), req); err != nil {
		h.logger.Error("Failed to send contact mail", "error", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to send message")
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"message": "Message sent",
	})
}
