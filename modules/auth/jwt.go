package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// JWTConfig holds token signing configuration. Session tokens and password
// reset tokens are signed with different secrets so a leaked reset link can
// never be replayed as a login session.
type JWTConfig struct {
	SecretKey       string
	ResetSecretKey  string
	SessionDuration time.Duration
	ResetDuration   time.Duration
	Issuer          string
}

// DefaultJWTConfig returns the default configuration. In production the
// secrets are loaded from environment variables.
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:       "change-me-in-production",
		ResetSecretKey:  "change-me-too-in-production",
		SessionDuration: 5 * time.Hour,
		ResetDuration:   15 * time.Minute,
		Issuer:          "nextchat",
	}
}

// JWTClaims are the custom claims carried by both token kinds.
type JWTClaims struct {
	UserID    string `json:"id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates session and reset tokens.
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a JWTManager with the given configuration.
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{config: config}
}

// GenerateSessionToken issues a login session token for the user.
func (m *JWTManager) GenerateSessionToken(userID string) (string, error) {
	return m.generate(userID, "session", m.config.SessionDuration, m.config.SecretKey)
}

// GenerateResetToken issues a short-lived password reset token.
func (m *JWTManager) GenerateResetToken(userID string) (string, error) {
	return m.generate(userID, "reset", m.config.ResetDuration, m.config.ResetSecretKey)
}

func (m *JWTManager) generate(userID, tokenType string, duration time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionToken validates a login session token.
func (m *JWTManager) ValidateSessionToken(tokenString string) (*JWTClaims, error) {
	return m.validate(tokenString, "session", m.config.SecretKey)
}

// ValidateResetToken validates a password reset token.
func (m *JWTManager) ValidateResetToken(tokenString string) (*JWTClaims, error) {
	return m.validate(tokenString, "reset", m.config.ResetSecretKey)
}

func (m *JWTManager) validate(tokenString, tokenType, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// SessionDurationSeconds returns the session token lifetime in seconds.
func (m *JWTManager) SessionDurationSeconds() int64 {
	return int64(m.config.SessionDuration.Seconds())
}
