package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port defines the mail operations other modules consume.
type Port interface {
	SendContact(ctx context.Context, req ContactRequest) error
	SendPasswordReset(ctx context.Context, req PasswordResetRequest) error
}

// Adapter implements Port on top of the service container.
type Adapter struct {
	container mono.ServiceContainer
}

var _ Port = (*Adapter)(nil)

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{
		container: container,
	}
}

// SendContact delivers a contact form message to the support inbox.
func (a *Adapter) SendContact(ctx context.Context, req ContactRequest) error {
	var resp ContactResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"send-contact",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("send-contact request failed: %w", err)
	}
	return nil
}

// SendPasswordReset delivers a password reset link to the user.
func (a *Adapter) SendPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	var resp PasswordResetResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"send-password-reset",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("send-password-reset request failed: %w", err)
	}
	return nil
}
