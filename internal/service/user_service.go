package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UserService covers admin account management and self-service profile edits.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// UserCreateInput describes an admin-created account.
type UserCreateInput struct {
	Email      string
	Name       string
	Password   string
	Role       domain.Role
	Department *string
	Location   *string
}

// UserUpdateInput describes an admin mutation of an account. Nil fields stay
// untouched.
type UserUpdateInput struct {
	Name       *string
	Role       *domain.Role
	Department *string
	Location   *string
	Active     *bool
	Password   *string
}

// ProfileUpdateInput describes the fields a user may edit on themselves.
type ProfileUpdateInput struct {
	Name       *string
	Department *string
	Location   *string
}

// CreateUser registers an account with an explicit role. Admin only.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	violations := map[string]any{}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || !strings.Contains(email, "@") {
		violations["email"] = "valid email required"
	}
	if name == "" {
		violations["name"] = "required"
	}
	if len(input.Password) < passwordMinLen {
		violations["password"] = fmt.Sprintf("must be at least %d characters", passwordMinLen)
	}
	if !domain.ValidRole(input.Role) {
		violations["role"] = "unknown role"
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid user", violations)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         input.Role,
		Department:   input.Department,
		Location:     input.Location,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns accounts matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser fetches one account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser applies an admin mutation. Deactivation is a soft delete;
// accounts are never removed. An admin cannot deactivate their own account.
func (s *UserService) UpdateUser(ctx context.Context, adminID, targetID string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if input.Active != nil && !*input.Active && targetID == adminID {
		return nil, apperrors.NewValidationError("cannot deactivate your own account", nil)
	}
	if input.Role != nil && !domain.ValidRole(*input.Role) {
		return nil, apperrors.NewValidationError("invalid user update", map[string]any{"role": "unknown role"})
	}
	if input.Password != nil {
		if len(*input.Password) < passwordMinLen {
			return nil, apperrors.NewValidationError("invalid user update",
				map[string]any{"password": fmt.Sprintf("must be at least %d characters", passwordMinLen)})
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.PasswordHash = hash
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		name := strings.TrimSpace(*input.Name)
		user.Name = name
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Department != nil {
		user.Department = emptyToNil(*input.Department)
	}
	if input.Location != nil {
		user.Location = emptyToNil(*input.Location)
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile applies a self-service edit of the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		name := strings.TrimSpace(*input.Name)
		user.Name = name
	}
	if input.Department != nil {
		user.Department = emptyToNil(*input.Department)
	}
	if input.Location != nil {
		user.Location = emptyToNil(*input.Location)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
