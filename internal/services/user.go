package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/apierr"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

const bcryptCost = 12

type CreateUserInput struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      types.UserRole `json:"role,omitempty"`
}

type UserService interface {
	Create(dbc dbctx.Context, input CreateUserInput) (*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      baseLog.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (s *userService) Create(dbc dbctx.Context, input CreateUserInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.Invalid("invalid_email", "a valid email is required")
	}
	if len(input.Password) < 6 {
		return nil, apierr.Invalid("invalid_password", "password must be at least 6 characters")
	}
	role := input.Role
	if role == "" {
		role = types.UserRoleUser
	}

	existing, err := s.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, apierr.Internal("user_lookup_failed", err)
	}
	if existing != nil {
		return nil, apierr.Conflict("email_taken", "user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, apierr.Internal("password_hash_failed", err)
	}

	now := time.Now()
	user := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(dbc, user); err != nil {
		return nil, apierr.Internal("user_create_failed", err)
	}
	return user, nil
}

func (s *userService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	user, err := s.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal("user_lookup_failed", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	return user, nil
}

func (s *userService) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	user, err := s.userRepo.GetByEmail(dbc, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apierr.Internal("user_lookup_failed", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	return user, nil
}
