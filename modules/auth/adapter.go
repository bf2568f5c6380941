package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/nextchat/domain/user"
)

// Port defines the auth operations other modules consume. The HTTP
// layer talks to auth through this port rather than importing the
// service directly.
type Port interface {
	Register(ctx context.Context, username, email, password string) (*RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.Profile, error)
	DeleteUser(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, token, password string) error
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

func (a *Adapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Register creates a new account.
func (a *Adapter) Register(ctx context.Context, username, email, password string) (*RegisterResponse, error) {
	req := RegisterRequest{Username: username, Email: email, Password: password}
	var resp RegisterResponse
	if err := a.call(ctx, "register", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates a user.
func (a *Adapter) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp LoginResponse
	if err := a.call(ctx, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken validates a session token and returns its claims.
func (a *Adapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := a.call(ctx, "validate-token", &req, &resp); err != nil {
		return nil, err
	}
	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}
	return &domain.Claims{UserID: resp.UserID}, nil
}

// GetUser retrieves a profile by user ID.
func (a *Adapter) GetUser(ctx context.Context, userID string) (*domain.Profile, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := a.call(ctx, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser applies partial account updates.
func (a *Adapter) UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.Profile, error) {
	var resp UpdateUserResponse
	if err := a.call(ctx, "update-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteUser removes an account.
func (a *Adapter) DeleteUser(ctx context.Context, userID string) error {
	req := DeleteUserRequest{UserID: userID}
	var resp DeleteUserResponse
	return a.call(ctx, "delete-user", &req, &resp)
}

// ForgotPassword issues a reset token for the account owning the email.
func (a *Adapter) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResponse, error) {
	req := ForgotPasswordRequest{Email: email}
	var resp ForgotPasswordResponse
	if err := a.call(ctx, "forgot-password", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword validates a reset token and sets a new password.
func (a *Adapter) ResetPassword(ctx context.Context, token, password string) error {
	req := ResetPasswordRequest{Token: token, Password: password}
	var resp ResetPasswordResponse
	return a.call(ctx, "reset-password", &req, &resp)
}
