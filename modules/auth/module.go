package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/nextchat/domain/user"
)

// Module provides account management and token services.
type Module struct {
	db      *gorm.DB
	service *AuthService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new auth Module.
func NewModule() *Module {
	dbPath := os.Getenv("AUTH_DB_PATH")
	if dbPath == "" {
		dbPath = "nextchat.db"
	}
	return &Module{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "auth"
}

// Start opens the database and wires up the service.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	jwtManager := NewJWTManager(loadJWTConfig())

	m.service = NewAuthService(repo, hasher, jwtManager)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{"register", func() error {
			return helper.RegisterTypedRequestReplyService(container, "register", json.Unmarshal, json.Marshal, m.handleRegister)
		}},
		{"login", func() error {
			return helper.RegisterTypedRequestReplyService(container, "login", json.Unmarshal, json.Marshal, m.handleLogin)
		}},
		{"get-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser)
		}},
		{"update-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-user", json.Unmarshal, json.Marshal, m.handleUpdateUser)
		}},
		{"delete-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-user", json.Unmarshal, json.Marshal, m.handleDeleteUser)
		}},
		{"forgot-password", func() error {
			return helper.RegisterTypedRequestReplyService(container, "forgot-password", json.Unmarshal, json.Marshal, m.handleForgotPassword)
		}},
		{"reset-password", func() error {
			return helper.RegisterTypedRequestReplyService(container, "reset-password", json.Unmarshal, json.Marshal, m.handleResetPassword)
		}},
		{"validate-token", func() error {
			return helper.RegisterTypedRequestReplyService(container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken)
		}},
	}

	for _, svc := range services {
		if err := svc.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	log.Printf("[auth] Registered services: register, login, get-user, update-user, delete-user, forgot-password, reset-password, validate-token")
	return nil
}

func (m *Module) handleRegister(_ context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	profile, token, err := m.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{
		User:      *profile,
		Token:     token,
		ExpiresIn: m.service.tokens.SessionDurationSeconds(),
	}, nil
}

func (m *Module) handleLogin(_ context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	profile, token, err := m.service.Login(req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		User:      *profile,
		Token:     token,
		ExpiresIn: m.service.tokens.SessionDurationSeconds(),
	}, nil
}

func (m *Module) handleGetUser(_ context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	profile, err := m.service.GetUser(req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}
	return GetUserResponse{User: *profile}, nil
}

func (m *Module) handleUpdateUser(_ context.Context, req UpdateUserRequest, _ *mono.Msg) (UpdateUserResponse, error) {
	profile, err := m.service.UpdateUser(req.UserID, req.Username, req.Email, req.Password)
	if err != nil {
		return UpdateUserResponse{}, err
	}
	return UpdateUserResponse{User: *profile}, nil
}

func (m *Module) handleDeleteUser(_ context.Context, req DeleteUserRequest, _ *mono.Msg) (DeleteUserResponse, error) {
	if err := m.service.DeleteUser(req.UserID); err != nil {
		return DeleteUserResponse{}, err
	}
	return DeleteUserResponse{Deleted: true}, nil
}

func (m *Module) handleForgotPassword(_ context.Context, req ForgotPasswordRequest, _ *mono.Msg) (ForgotPasswordResponse, error) {
	user, token, err := m.service.ForgotPassword(req.Email)
	if err != nil {
		return ForgotPasswordResponse{}, err
	}
	return ForgotPasswordResponse{
		Username:   user.Username,
		Email:      user.Email,
		ResetToken: token,
	}, nil
}

func (m *Module) handleResetPassword(_ context.Context, req ResetPasswordRequest, _ *mono.Msg) (ResetPasswordResponse, error) {
	if err := m.service.ResetPassword(req.Token, req.Password); err != nil {
		return ResetPasswordResponse{}, err
	}
	return ResetPasswordResponse{Reset: true}, nil
}

func (m *Module) handleValidateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	userID, err := m.service.ValidateSession(req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		// Validation failures are a response, not a transport error.
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}
	return ValidateTokenResponse{
		Valid:  true,
		UserID: userID,
	}, nil
}

// loadJWTConfig loads token configuration from environment variables.
func loadJWTConfig() JWTConfig {
	config := DefaultJWTConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}
	if secret := os.Getenv("JWT_RESET_SECRET_KEY"); secret != "" {
		config.ResetSecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}

	return config
}
