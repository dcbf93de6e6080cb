package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/constants"
	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
)

var ErrInvalidRole = errors.New("role must be one of student, teacher, admin")

// UserService is the admin-only user management surface: listing, editing,
// suspension, and hard deletion.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers returns every user.
func (s *UserService) ListUsers(actor authz.Actor) ([]models.User, error) {
	if err := authz.Can(actor, authz.ActionManageUsers, authz.GroupContext{}); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUserInput represents admin-side user creation, which unlike
// self-registration may pick any role.
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
	Role     models.UserRole
}

// CreateUser creates a user with an explicit role.
func (s *UserService) CreateUser(actor authz.Actor, input CreateUserInput) (*models.User, error) {
	if err := authz.Can(actor, authz.ActionManageUsers, authz.GroupContext{}); err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Role == "" {
		input.Role = models.RoleStudent
	}
	if !models.ValidUserRole(input.Role) {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUserInput carries the editable user fields.
type UpdateUserInput struct {
	FullName *string
	Email    *string
	Role     *models.UserRole
}

// UpdateUser merges the provided fields into a user record.
func (s *UserService) UpdateUser(actor authz.Actor, userID uint64, input UpdateUserInput) (*models.User, error) {
	if err := authz.Can(actor, authz.ActionManageUsers, authz.GroupContext{}); err != nil {
		return nil, err
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, ErrFullNameRequired
		}
		user.FullName = *input.FullName
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}
	if input.Role != nil {
		if !models.ValidUserRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// SetSuspended flips the suspended flag. A suspended user can no longer log
// in; existing references to them stay untouched.
func (s *UserService) SetSuspended(actor authz.Actor, userID uint64, suspended bool) (*models.User, error) {
	if err := authz.Can(actor, authz.ActionManageUsers, authz.GroupContext{}); err != nil {
		return nil, err
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	user.Suspended = suspended
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser hard-deletes a user. Nothing cascades: groups and tasks they
// created keep dangling ids, which is the accepted contract.
func (s *UserService) DeleteUser(actor authz.Actor, userID uint64) error {
	if err := authz.Can(actor, authz.ActionManageUsers, authz.GroupContext{}); err != nil {
		return err
	}

	found, err := s.userRepo.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !found {
		return ErrUserNotFound
	}

	return nil
}

func (s *UserService) findUser(userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
