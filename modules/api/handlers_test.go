package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/nextchat/domain/user"
	"github.com/example/nextchat/modules/auth"
	"github.com/example/nextchat/modules/mailer"
)

// fakeAuthPort implements auth.Port with canned responses.
type fakeAuthPort struct {
	registerErr error
	loginErr    error
	validateErr error
	profile     domain.Profile
}

func (f *fakeAuthPort) Register(_ context.Context, username, email, _ string) (*auth.RegisterResponse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &auth.RegisterResponse{
		User:      domain.Profile{ID: "user-1", Username: username, Email: email},
		Token:     "session-token",
		ExpiresIn: 3600,
	}, nil
}

func (f *fakeAuthPort) Login(_ context.Context, email, _ string) (*auth.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &auth.LoginResponse{
		User:      domain.Profile{ID: "user-1", Username: "alice", Email: email},
		Token:     "session-token",
		ExpiresIn: 3600,
	}, nil
}

func (f *fakeAuthPort) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if token != "session-token" {
		return nil, errors.New("token validation failed: invalid token")
	}
	return &domain.Claims{UserID: "user-1"}, nil
}

func (f *fakeAuthPort) GetUser(_ context.Context, _ string) (*domain.Profile, error) {
	return &f.profile, nil
}

func (f *fakeAuthPort) UpdateUser(_ context.Context, req auth.UpdateUserRequest) (*domain.Profile, error) {
	p := f.profile
	if req.Username != "" {
		p.Username = req.Username
	}
	return &p, nil
}

func (f *fakeAuthPort) DeleteUser(_ context.Context, _ string) error { return nil }

func (f *fakeAuthPort) ForgotPassword(_ context.Context, email string) (*auth.ForgotPasswordResponse, error) {
	return &auth.ForgotPasswordResponse{Username: "alice", Email: email, ResetToken: "reset-tok"}, nil
}

func (f *fakeAuthPort) ResetPassword(_ context.Context, _, _ string) error { return nil }

// fakeMailPort implements mailer.Port and records sends.
type fakeMailPort struct {
	contacts []mailer.ContactRequest
	resets   []mailer.PasswordResetRequest
	sendErr  error
}

func (f *fakeMailPort) SendContact(_ context.Context, req mailer.ContactRequest) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.contacts = append(f.contacts, req)
	return nil
}

func (f *fakeMailPort) SendPasswordReset(_ context.Context, req mailer.PasswordResetRequest) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.resets = append(f.resets, req)
	return nil
}

func newTestApp(authPort auth.Port, mailPort mailer.Port) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	h := NewHandlers(authPort, mailPort)

	users := app.Group("/api/users")
	users.Post("/", h.Register)
	users.Post("/login", h.Login)
	users.Post("/logout", h.Logout)
	users.Post("/forgot-password", h.ForgotPassword)
	users.Post("/reset-password/:token", h.ResetPassword)

	protected := users.Group("", RequireAuth(authPort))
	protected.Get("/me", h.Me)
	protected.Put("/:id", h.Update)
	protected.Delete("/:id", h.Delete)

	app.Post("/api/contact", h.Contact)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var parsed map[string]any
	json.Unmarshal(raw, &parsed)
	return resp, parsed
}

func TestRegisterEndpoint(t *testing.T) {
	app := newTestApp(&fakeAuthPort{}, &fakeMailPort{})

	resp, body := doJSON(t, app, "POST", "/api/users/",
		`{"username":"alice","email":"alice@example.com","password":"secret123"}`, nil)

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}

	var sawCookie bool
	for _, c := range resp.Cookies() {
		if c.Name == TokenCookieName && c.Value == "session-token" && c.HttpOnly {
			sawCookie = true
		}
	}
	if !sawCookie {
		t.Error("register should set an HTTP-only session cookie")
	}
}

func TestRegisterEndpointFailure(t *testing.T) {
	app := newTestApp(&fakeAuthPort{
		registerErr: errors.New("register request failed: Email already exists"),
	}, &fakeMailPort{})

	resp, body := doJSON(t, app, "POST", "/api/users/",
		`{"username":"alice","email":"alice@example.com","password":"secret123"}`, nil)

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["error"] != "Email already exists" {
		t.Errorf("error = %q, want the service message without transport prefix", body["error"])
	}
}

func TestLoginEndpointFailure(t *testing.T) {
	app := newTestApp(&fakeAuthPort{
		loginErr: errors.New("login request failed: Invalid email or password"),
	}, &fakeMailPort{})

	resp, body := doJSON(t, app, "POST", "/api/users/login",
		`{"email":"alice@example.com","password":"wrong"}`, nil)

	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
	if body["error"] != "Invalid email or password" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestMeRequiresAuth(t *testing.T) {
	fake := &fakeAuthPort{profile: domain.Profile{ID: "user-1", Username: "alice"}}
	app := newTestApp(fake, &fakeMailPort{})

	resp, _ := doJSON(t, app, "GET", "/api/users/me", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}

	resp, body := doJSON(t, app, "GET", "/api/users/me", "",
		map[string]string{"Authorization": "Bearer session-token"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("authenticated status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	if user["username"] != "alice" {
		t.Errorf("username = %v, want alice", user["username"])
	}
}

func TestMeAcceptsCookie(t *testing.T) {
	fake := &fakeAuthPort{profile: domain.Profile{ID: "user-1", Username: "alice"}}
	app := newTestApp(fake, &fakeMailPort{})

	resp, _ := doJSON(t, app, "GET", "/api/users/me", "",
		map[string]string{"Cookie": TokenCookieName + "=session-token"})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("cookie auth status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestUpdateOtherAccountForbidden(t *testing.T) {
	fake := &fakeAuthPort{profile: domain.Profile{ID: "user-1", Username: "alice"}}
	app := newTestApp(fake, &fakeMailPort{})

	resp, _ := doJSON(t, app, "PUT", "/api/users/user-2",
		`{"username":"mallory"}`,
		map[string]string{"Authorization": "Bearer session-token"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusForbidden)
	}
}

func TestForgotPasswordSendsMailAndStaysGeneric(t *testing.T) {
	mail := &fakeMailPort{}
	app := newTestApp(&fakeAuthPort{}, mail)

	resp, body := doJSON(t, app, "POST", "/api/users/forgot-password",
		`{"email":"alice@example.com"}`, nil)

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if len(mail.resets) != 1 {
		t.Fatalf("reset mails sent = %d, want 1", len(mail.resets))
	}
	if mail.resets[0].ResetToken != "reset-tok" {
		t.Errorf("ResetToken = %q", mail.resets[0].ResetToken)
	}

	data := body["data"].(map[string]any)
	msg := data["message"].(string)
	if strings.Contains(msg, "reset-tok") {
		t.Error("response must not leak the reset token")
	}
}

func TestContactEndpoint(t *testing.T) {
	mail := &fakeMailPort{}
	app := newTestApp(&fakeAuthPort{}, mail)

	resp, _ := doJSON(t, app, "POST", "/api/contact",
		`{"name":"Alice","email":"alice@example.com","message":"Hello, I have a question about rooms."}`, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if len(mail.contacts) != 1 {
		t.Errorf("contact mails sent = %d, want 1", len(mail.contacts))
	}

	// Validation failures never reach the mail port.
	resp, body := doJSON(t, app, "POST", "/api/contact",
		`{"name":"","email":"bad","message":"x"}`, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("invalid contact status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if len(mail.contacts) != 1 {
		t.Errorf("contact mails sent = %d after invalid submission, want 1", len(mail.contacts))
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(&fakeAuthPort{}, &fakeMailPort{})

	resp, _ := doJSON(t, app, "POST", "/api/users/logout", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == TokenCookieName && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout should clear the session cookie")
	}
}
