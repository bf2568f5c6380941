package auth

import (
	domain "github.com/example/nextchat/domain/user"
)

// RegisterRequest is the payload for the register service.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the result of a successful registration.
type RegisterResponse struct {
	User      domain.Profile `json:"user"`
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
}

// LoginRequest is the payload for the login service.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the result of a successful login.
type LoginResponse struct {
	User      domain.Profile `json:"user"`
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
}

// GetUserRequest is the payload for the get-user service.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse carries the requested profile.
type GetUserResponse struct {
	User domain.Profile `json:"user"`
}

// UpdateUserRequest is the payload for the update-user service. Empty
// fields are left unchanged.
type UpdateUserRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserResponse carries the updated profile.
type UpdateUserResponse struct {
	User domain.Profile `json:"user"`
}

// DeleteUserRequest is the payload for the delete-user service.
type DeleteUserRequest struct {
	UserID string `json:"user_id"`
}

// DeleteUserResponse acknowledges deletion.
type DeleteUserResponse struct {
	Deleted bool `json:"deleted"`
}

// ForgotPasswordRequest is the payload for the forgot-password service.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse carries the reset token and recipient details
// so the caller can dispatch the reset mail.
type ForgotPasswordResponse struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// ResetPasswordRequest is the payload for the reset-password service.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPasswordResponse acknowledges the password change.
type ResetPasswordResponse struct {
	Reset bool `json:"reset"`
}

// ValidateTokenRequest is the payload for the validate-token service.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse reports the validation outcome.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Error  string `json:"error,omitempty"`
}
