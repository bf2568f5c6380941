package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module delivers transactional email for the rest of the application.
type Module struct {
	mailer *Mailer
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new mailer Module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "mailer"
}

// Start loads SMTP configuration and wires up the mailer.
func (m *Module) Start(_ context.Context) error {
	config := loadConfig()
	m.mailer = NewMailer(config, slog.Default().With("module", "mailer"))

	if config.Enabled() {
		log.Printf("[mailer] Module started (smtp: %s:%d)", config.Host, config.Port)
	} else {
		log.Printf("[mailer] Module started in disabled mode (no SMTP credentials)")
	}
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[mailer] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.mailer == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "mailer not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"smtp_enabled": m.mailer.config.Enabled(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"send-contact",
		json.Unmarshal,
		json.Marshal,
		m.handleSendContact,
	); err != nil {
		return fmt.Errorf("failed to register send-contact service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"send-password-reset",
		json.Unmarshal,
		json.Marshal,
		m.handleSendPasswordReset,
	); err != nil {
		return fmt.Errorf("failed to register send-password-reset service: %w", err)
	}

	log.Printf("[mailer] Registered services: send-contact, send-password-reset")
	return nil
}

func (m *Module) handleSendContact(_ context.Context, req ContactRequest, _ *mono.Msg) (ContactResponse, error) {
	if err := m.mailer.SendContact(req); err != nil {
		return ContactResponse{}, err
	}
	return ContactResponse{Sent: true}, nil
}

func (m *Module) handleSendPasswordReset(_ context.Context, req PasswordResetRequest, _ *mono.Msg) (PasswordResetResponse, error) {
	if err := m.mailer.SendPasswordReset(req); err != nil {
		return PasswordResetResponse{}, err
	}
	return PasswordResetResponse{Sent: true}, nil
}

// loadConfig loads SMTP settings from environment variables.
func loadConfig() Config {
	config := Config{
		Host:         "smtp.gmail.com",
		Port:         587,
		Username:     os.Getenv("EMAIL_USER"),
		Password:     os.Getenv("EMAIL_PASS"),
		SupportEmail: os.Getenv("SUPPORT_EMAIL"),
		AppURL:       "http://localhost:3000",
	}

	if host := os.Getenv("SMTP_HOST"); host != "" {
		config.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if url := os.Getenv("APP_URL"); url != "" {
		config.AppURL = url
	}
	if config.SupportEmail == "" {
		config.SupportEmail = config.Username
	}

	return config
}
