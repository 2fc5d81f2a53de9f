package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/libms/library-backend/internal/models"
	repo "github.com/libms/library-backend/internal/repository"
)

// UserService is the librarian-only user administration path. Role
// assignment happens here, never through public registration.
type UserService struct {
	users repo.Users
}

func NewUserService(users repo.Users) *UserService {
	return &UserService{users: users}
}

type UserUpdate struct {
	Name  string
	Email string
	Role  models.Role
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if upd.Name != "" {
		u.Name = strings.TrimSpace(upd.Name)
	}
	if upd.Email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(upd.Email))
	}
	if upd.Role != "" {
		u.Role = upd.Role
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	slog.Info("user updated", "user_id", id, "role", updated.Role)
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}
