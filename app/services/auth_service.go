package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/apperr"
	"github.com/shashiranjanraj/sweetshop/pkg/auth"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
	"github.com/shashiranjanraj/sweetshop/pkg/validate"
)

type SignupInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthService handles accounts and session tokens.
type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.Tokens
}

func NewAuthService(users repositories.UserRepository, tokens *auth.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Tokens exposes the token issuer (cookie lifetime follows its TTL).
func (s *AuthService) Tokens() *auth.Tokens { return s.tokens }

// Signup registers a regular user and returns it with a session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		metrics.AuthAttempts.WithLabelValues("signup", "invalid").Inc()
		return models.User{}, "", ErrMissingSignupFields
	}
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		metrics.AuthAttempts.WithLabelValues("signup", "invalid").Inc()
		return models.User{}, "", apperr.Invalid(validationFailed, errs)
	}

	user, err := s.create(ctx, in.Name, in.Email, in.Password, models.RoleUser)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrEmailTaken) {
			result = "duplicate"
		}
		metrics.AuthAttempts.WithLabelValues("signup", result).Inc()
		return models.User{}, "", err
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return models.User{}, "", apperr.Wrap(apperr.Internal, "Error signing up user", err)
	}
	metrics.AuthAttempts.WithLabelValues("signup", "ok").Inc()
	return user, token, nil
}

func (s *AuthService) create(ctx context.Context, name, email, password, role string) (models.User, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return models.User{}, apperr.Invalid(validationFailed, map[string]string{
			"password": "The password must not exceed 72 bytes.",
		})
	}
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "Error signing up user", err)
	}

	user := models.User{Name: name, Email: email, Password: hash, Role: role}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "Error signing up user", err)
	}
	return user, nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt time for an unknown email as for
// a wrong password.
func burnPasswordCheck(plain string) {
	dummyHashOnce.Do(func() { dummyHash, _ = auth.HashPassword("sweetshop-dummy-password") })
	auth.CheckPassword(dummyHash, plain)
}

// Login verifies credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return models.User{}, "", ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		burnPasswordCheck(in.Password)
		metrics.AuthAttempts.WithLabelValues("login", "denied").Inc()
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", apperr.Wrap(apperr.Internal, "Error logging in", err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		metrics.AuthAttempts.WithLabelValues("login", "denied").Inc()
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return models.User{}, "", apperr.Wrap(apperr.Internal, "Error logging in", err)
	}
	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	return user, token, nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrAuthRequired
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return models.User{}, ErrAuthFailed.WithCause(err)
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "Authentication failed", err)
	}
	return user, nil
}

// EnsureAdmin creates an admin account, or promotes the existing account
// with that email. It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (models.User, bool, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, false, errors.New("admin: email and password are required")
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsAdmin() {
			return user, false, nil
		}
		if err := s.users.SetRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return models.User{}, false, fmt.Errorf("admin: promote: %w", err)
		}
		user.Role = models.RoleAdmin
		return user, false, nil
	case errors.Is(err, repositories.ErrNotFound):
		if len(password) < 6 {
			return models.User{}, false, errors.New("admin: password must be at least 6 characters")
		}
		user, err := s.create(ctx, strings.TrimSpace(name), email, password, models.RoleAdmin)
		if err != nil {
			return models.User{}, false, fmt.Errorf("admin: create: %w", err)
		}
		return user, true, nil
	default:
		return models.User{}, false, fmt.Errorf("admin: lookup: %w", err)
	}
}
