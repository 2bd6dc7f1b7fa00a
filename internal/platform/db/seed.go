package db

import (
	"context"

	"paysheet/internal/domain/auth"
	"paysheet/internal/platform/config"
)

// UserSeeder creates a user when its email is not taken yet.
type UserSeeder interface {
	SeedUser(ctx context.Context, email, password, role string) error
}

// Seed creates the configured admin account. Nothing is seeded when no
// admin email is configured.
func Seed(ctx context.Context, users UserSeeder, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" {
		return nil
	}
	return users.SeedUser(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin)
}
