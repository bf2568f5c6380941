package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/gomail.v2"
)

var (
	// ErrNotConfigured is returned when mail delivery is attempted
	// without SMTP credentials.
	ErrNotConfigured = errors.New("mailer not configured")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
)

var emailPattern = regexp.MustCompile(`^(?:[a-zA-Z0-9_'^&+/=?` + "`" + `{|}~-]+(?:\.[a-zA-Z0-9_'^&+/=?` + "`" + `{|}~-]+)*)@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)

// ValidationError carries a user-facing message for a rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New Contact Message</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>`))

var resetTemplate = template.Must(template.New("reset").Parse(`<h2>Password Reset</h2>
<p>Hi {{.Username}},</p>
<p>We received a request to reset your password. Click the link below to choose a new one:</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
<p>This link expires in 15 minutes. If you did not request a reset, you can ignore this email.</p>`))

// Config holds SMTP settings. A Config with an empty Username leaves the
// mailer in disabled mode where sends are logged instead of delivered.
type Config struct {
	Host         string
	Port         int
	Username     string
	Password     string
	SupportEmail string
	AppURL       string
}

// Enabled reports whether SMTP credentials are present.
func (c Config) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

// Mailer renders and delivers transactional email over SMTP.
type Mailer struct {
	config Config
	dialer *gomail.Dialer
	logger *slog.Logger
}

// NewMailer creates a Mailer. When the config carries no credentials the
// mailer runs disabled and logs mail it would have sent.
func NewMailer(config Config, logger *slog.Logger) *Mailer {
	m := &Mailer{config: config, logger: logger}
	if config.Enabled() {
		m.dialer = gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	}
	return m
}

// ValidateContact checks a contact form submission.
func ValidateContact(req *ContactRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	// Character limits count runes; a non-ASCII message is not shorter
	// for being multi-byte.
	if req.Name == "" {
		return invalid("Name is required")
	}
	if utf8.RuneCountInString(req.Name) > 100 {
		return invalid("Name must be at most 100 characters")
	}
	if !emailPattern.MatchString(req.Email) {
		return invalid("A valid email is required")
	}
	if messageLen := utf8.RuneCountInString(req.Message); messageLen < 10 {
		return invalid("Message must be at least 10 characters")
	} else if messageLen > 2000 {
		return invalid("Message must be at most 2000 characters")
	}
	return nil
}

// SendContact delivers a contact form message to the support inbox.
func (m *Mailer) SendContact(req ContactRequest) error {
	if err := ValidateContact(&req); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := contactTemplate.Execute(&body, req); err != nil {
		return fmt.Errorf("failed to render contact mail: %w", err)
	}

	if m.dialer == nil {
		m.logger.Info("mailer disabled, dropping contact mail",
			"from", req.Email, "name", req.Name)
		return ErrNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.Username)
	msg.SetHeader("To", m.config.SupportEmail)
	msg.SetHeader("Reply-To", req.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Contact form: %s", req.Name))
	msg.SetBody("text/html", body.String())

	return m.dialer.DialAndSend(msg)
}

// SendPasswordReset delivers a password reset link to the user.
func (m *Mailer) SendPasswordReset(req PasswordResetRequest) error {
	data := struct {
		Username string
		ResetURL string
	}{
		Username: req.Username,
		ResetURL: fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(m.config.AppURL, "/"), req.ResetToken),
	}

	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render reset mail: %w", err)
	}

	if m.dialer == nil {
		m.logger.Info("mailer disabled, dropping password reset mail",
			"to", req.Email)
		return ErrNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.Username)
	msg.SetHeader("To", req.Email)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/html", body.String())

	return m.dialer.DialAndSend(msg)
}
