package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/libms/library-backend/internal/auth"
	"github.com/libms/library-backend/internal/models"
	repo "github.com/libms/library-backend/internal/repository"
)

// AuthService registers and authenticates users, handing back signed bearer
// tokens. Public registration always gets the PATRON role; librarian
// accounts come from the user-management path or the admin CLI.
type AuthService struct {
	users repo.Users
	tm    *auth.TokenManager
}

func NewAuthService(users repo.Users, tm *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tm: tm}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	u := models.User{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Role:  models.RolePatron,
	}
	if err := u.Validate(); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	created, err := s.users.Create(ctx, u.Name, u.Email, hash, models.RolePatron)
	if err != nil {
		return "", err
	}
	slog.Info("user registered", "user_id", created.ID, "email", created.Email)

	token, _, err := s.tm.Generate(created.ID, string(created.Role))
	return token, err
}

// Login never tells the caller whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			slog.Debug("login for unknown email", "email", email)
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		slog.Debug("login with wrong password", "user_id", u.ID)
		return "", models.ErrInvalidCredentials
	}

	token, _, err := s.tm.Generate(u.ID, string(u.Role))
	if err != nil {
		return "", err
	}
	slog.Info("user authenticated", "user_id", u.ID)
	return token, nil
}
