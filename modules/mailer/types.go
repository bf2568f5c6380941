package mailer

// ContactRequest is the payload for the send-contact service.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResponse acknowledges a delivered contact message.
type ContactResponse struct {
	Sent bool `json:"sent"`
}

// PasswordResetRequest is the payload for the send-password-reset service.
type PasswordResetRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// PasswordResetResponse acknowledges a delivered reset mail.
type PasswordResetResponse struct {
	Sent bool `json:"sent"`
}
