package db

import (
	"context"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/services"
)

type seedAccount struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      types.UserRole
}

var seedAccounts = []seedAccount{
	{"admin@example.com", "admin123", "System", "Administrator", types.UserRoleAdmin},
	{"user@example.com", "user123", "John", "Doe", types.UserRoleUser},
	{"editor@example.com", "editor123", "Jane", "Editor", types.UserRoleEditor},
	{"viewer@example.com", "viewer123", "Bob", "Viewer", types.UserRoleViewer},
}

// Seed creates the default accounts when they are absent. Safe to run on
// every startup.
func Seed(log *logger.Logger, userRepo repos.UserRepo, userService services.UserService) error {
	seedLog := log.With("service", "Seeder")
	dbc := dbctx.New(context.Background())

	for _, acc := range seedAccounts {
		existing, err := userRepo.GetByEmail(dbc, acc.email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := userService.Create(dbc, services.CreateUserInput{
			Email:     acc.email,
			Password:  acc.password,
			FirstName: acc.firstName,
			LastName:  acc.lastName,
			Role:      acc.role,
		}); err != nil {
			return err
		}
		seedLog.Info("Default user created", "role", acc.role)
	}
	return nil
}
