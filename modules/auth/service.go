package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/example/nextchat/domain/user"
)

var (
	// ErrInvalidCredentials is returned on a failed login attempt. The
	// message is intentionally identical for unknown email and wrong
	// password.
	ErrInvalidCredentials = errors.New("Invalid email or password")
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

// AuthService implements registration, login and account management.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, tokens *JWTManager) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Register creates a new user account and returns its profile with a
// session token.
func (s *AuthService) Register(username, email, password string) (*domain.Profile, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, "", invalid("Username is required")
	}
	if !validEmail(email) {
		return nil, "", invalid("A valid email is required")
	}
	if len(password) < 6 {
		return nil, "", invalid("Password must be at least 6 characters")
	}

	if taken, err := s.repo.EmailTaken(email, ""); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", invalid("Email already exists")
	}
	if taken, err := s.repo.UsernameTaken(username, ""); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", invalid("Username is already taken")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, "", invalid("Email already exists")
		}
		return nil, "", err
	}

	token, err := s.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	profile := domain.ProfileOf(user)
	return &profile, token, nil
}

// Login authenticates a user and returns its profile with a session token.
func (s *AuthService) Login(email, password string) (*domain.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	profile := domain.ProfileOf(user)
	return &profile, token, nil
}

// GetUser returns the profile for the given user ID.
func (s *AuthService) GetUser(id string) (*domain.Profile, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	profile := domain.ProfileOf(user)
	return &profile, nil
}

// UpdateUser applies partial updates to a user account. Empty fields
// are left unchanged.
func (s *AuthService) UpdateUser(id, username, email, password string) (*domain.Profile, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if username = strings.TrimSpace(username); username != "" {
		if taken, err := s.repo.UsernameTaken(username, id); err != nil {
			return nil, err
		} else if taken {
			return nil, invalid("Username is already taken")
		}
		user.Username = username
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		if !validEmail(email) {
			return nil, invalid("A valid email is required")
		}
		if taken, err := s.repo.EmailTaken(email, id); err != nil {
			return nil, err
		} else if taken {
			return nil, invalid("Email already exists")
		}
		user.Email = email
	}
	if password != "" {
		if len(password) < 6 {
			return nil, invalid("Password must be at least 6 characters")
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now()
	if err := s.repo.Save(user); err != nil {
		return nil, err
	}
	profile := domain.ProfileOf(user)
	return &profile, nil
}

// DeleteUser removes a user account.
func (s *AuthService) DeleteUser(id string) error {
	return s.repo.Delete(id)
}

// ForgotPassword issues a short-lived reset token for the account that
// owns the email. It returns the user and token so the caller can send
// the reset mail.
func (s *AuthService) ForgotPassword(email string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return nil, "", invalid("A valid email is required")
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateResetToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ResetPassword validates a reset token and sets a new password.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("Password must be at least 6 characters")
	}

	claims, err := s.tokens.ValidateResetToken(token)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	return s.repo.Save(user)
}

// ValidateSession checks a session token and returns the user ID it
// belongs to.
func (s *AuthService) ValidateSession(token string) (string, error) {
	claims, err := s.tokens.ValidateSessionToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
